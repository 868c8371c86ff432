package endpoints

import (
	"context"
	"iter"

	"github.com/jrsteele09/go-konan-sdk/sessions"
	"github.com/pkg/errors"
)

var ErrNoMorePages = errors.New("no more pages")

// Page is one decoded page of a listing. Next is empty on the last page.
type Page[Item any] struct {
	Items []Item
	Next  string
}

// Refresher keeps the session fresh between pages.
type Refresher interface {
	AutoRefresh(ctx context.Context) error
	Session() *sessions.Session
}

// Paginator follows the next links of a listing endpoint. The first page is
// requested with the endpoint's own URL and params; every later page is
// requested from the server supplied next URL as is, after refreshing the
// session. A Paginator cannot be restarted.
type Paginator[Req, Item any] struct {
	inner     *Endpoint[Req, Page[Item]]
	req       Req
	refresher Refresher
	started   bool
	next      string
}

func NewPaginator[Req, Item any](inner *Endpoint[Req, Page[Item]], req Req, refresher Refresher) *Paginator[Req, Item] {
	return &Paginator[Req, Item]{
		inner:     inner,
		req:       req,
		refresher: refresher,
	}
}

// HasNext reports whether another page can be fetched.
func (p *Paginator[Req, Item]) HasNext() bool {
	return !p.started || p.next != ""
}

// NextPage fetches the next page.
func (p *Paginator[Req, Item]) NextPage(ctx context.Context) ([]Item, error) {
	if !p.HasNext() {
		return nil, ErrNoMorePages
	}

	if !p.started {
		p.started = true
		page, err := p.inner.Request(ctx, p.req)
		if err != nil {
			return nil, err
		}
		p.next = page.Next
		return page.Items, nil
	}

	if p.refresher != nil {
		if err := p.refresher.AutoRefresh(ctx); err != nil {
			return nil, errors.Wrapf(err, "[%s] failed to refresh session", p.inner.Name())
		}
		if s := p.refresher.Session(); s != nil {
			p.inner.session = s
		}
	}

	p.inner.logger.Debug().Str("endpoint", p.inner.Name()).Str("next", p.next).Msg("following next page")

	resp, err := p.inner.send(ctx, p.next, &Request{})
	if err != nil {
		return nil, err
	}
	page, err := p.inner.process(resp)
	if err != nil {
		return nil, err
	}
	p.next = page.Next
	return page.Items, nil
}

// Pages yields every remaining page, stopping after the first error.
func (p *Paginator[Req, Item]) Pages(ctx context.Context) iter.Seq2[[]Item, error] {
	return func(yield func([]Item, error) bool) {
		for p.HasNext() {
			items, err := p.NextPage(ctx)
			if !yield(items, err) || err != nil {
				return
			}
		}
	}
}

// All drains the paginator into a single slice.
func (p *Paginator[Req, Item]) All(ctx context.Context) ([]Item, error) {
	var all []Item
	for items, err := range p.Pages(ctx) {
		if err != nil {
			return all, err
		}
		all = append(all, items...)
	}
	return all, nil
}
