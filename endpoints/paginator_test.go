package endpoints_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-konan-sdk/endpoints"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/jrsteele09/go-konan-sdk/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls   int
	session *sessions.Session
	err     error
}

func (f *fakeRefresher) AutoRefresh(context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeRefresher) Session() *sessions.Session {
	return f.session
}

func newPredictionsPaginator(t *testing.T, apiURL string, window konan.TimeWindow, refresher endpoints.Refresher) *endpoints.Paginator[konan.TimeWindow, konan.Prediction] {
	t.Helper()
	inner, err := endpoints.New(endpoints.PaginatedPredictions{}, apiURL,
		endpoints.WithSession(refresher.Session()),
		endpoints.WithDeploymentUUID(testDeploymentUUID),
	)
	require.NoError(t, err)
	return endpoints.NewPaginator(inner, window, refresher)
}

func TestPaginatorFollowsNext(t *testing.T) {
	api := newFakeAPI(t)
	api.replies = []reply{
		{http.StatusOK, fmt.Sprintf(`{"count":3,"next":"%s/deployments/%s/predictions/?page=2","previous":null,
			"results":[{"uuid":"p1","mls_output_json":1},{"uuid":"p2","mls_output_json":2}]}`, api.URL(), testDeploymentUUID)},
		{http.StatusOK, `{"count":3,"next":null,"previous":"x","results":[{"uuid":"p3","mls_output_json":3}]}`},
	}

	refresher := &fakeRefresher{session: newSession(t)}
	window := konan.TimeWindow{
		StartTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	p := newPredictionsPaginator(t, api.URL(), window, refresher)

	var pages [][]konan.Prediction
	for items, err := range p.Pages(context.Background()) {
		require.NoError(t, err)
		pages = append(pages, items)
	}

	require.Len(t, pages, 2)
	assert.Len(t, pages[0], 2)
	assert.Equal(t, "p3", pages[1][0].UUID)
	assert.False(t, p.HasNext())
	assert.Equal(t, 1, refresher.calls)

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/deployments/dep-123/predictions/", reqs[0].Path)
	assert.Contains(t, reqs[0].Query, "start_time=2023-01-01T00%3A00%3A00Z")
	assert.Contains(t, reqs[0].Query, "end_time=")
	assert.Equal(t, "page=2", reqs[1].Query)
	assert.Equal(t, "Bearer "+refresher.session.AccessToken, reqs[1].Header.Get("Authorization"))

	_, err := p.NextPage(context.Background())
	require.ErrorIs(t, err, endpoints.ErrNoMorePages)
}

func TestPaginatorSinglePage(t *testing.T) {
	api := newFakeAPI(t, reply{http.StatusOK, `{"count":0,"next":null,"previous":null,"results":[]}`})
	refresher := &fakeRefresher{session: newSession(t)}
	p := newPredictionsPaginator(t, api.URL(), konan.TimeWindow{}, refresher)

	all, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 0, refresher.calls)
	assert.Len(t, api.Requests(), 1)
}

func TestPaginatorUsesRefreshedSession(t *testing.T) {
	api := newFakeAPI(t)
	api.replies = []reply{
		{http.StatusOK, fmt.Sprintf(`{"next":"%s/next","results":[]}`, api.URL())},
		{http.StatusOK, `{"next":null,"results":[{"uuid":"p9"}]}`},
	}

	first := newSession(t)
	refresher := &fakeRefresher{session: first}
	p := newPredictionsPaginator(t, api.URL(), konan.TimeWindow{}, refresher)

	_, err := p.NextPage(context.Background())
	require.NoError(t, err)

	relogged := newSession(t)
	refresher.session = relogged
	items, err := p.NextPage(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/next", reqs[1].Path)
	assert.Equal(t, "Bearer "+relogged.AccessToken, reqs[1].Header.Get("Authorization"))
}

func TestPaginatorStopsOnError(t *testing.T) {
	api := newFakeAPI(t)
	api.replies = []reply{
		{http.StatusOK, fmt.Sprintf(`{"next":"%s/next","results":[]}`, api.URL())},
	}

	refreshErr := errors.New("refresh failed")
	refresher := &fakeRefresher{session: newSession(t), err: refreshErr}
	p := newPredictionsPaginator(t, api.URL(), konan.TimeWindow{}, refresher)

	var errs []error
	for _, err := range p.Pages(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], refreshErr)
	assert.Len(t, api.Requests(), 1)
}

func TestPaginatorFirstPageHTTPError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(api.Close)

	p := newPredictionsPaginator(t, api.URL, konan.TimeWindow{}, &fakeRefresher{session: newSession(t)})
	_, err := p.NextPage(context.Background())
	var httpErr *endpoints.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.False(t, p.HasNext())
}
