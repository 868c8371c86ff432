package endpoints

import "github.com/jrsteele09/go-konan-sdk/konan"

// GetPredictions fetches a single raw page of a deployment's predictions.
type GetPredictions struct{}

var _ Codec[konan.TimeWindow, *konan.PredictionsPage] = GetPredictions{}

func (GetPredictions) Descriptor() Descriptor {
	return Descriptor{Name: "get-predictions", Path: RoutePredictions, Operation: GET, RequiresAuth: true, Scope: ScopeDeployment}
}

func (GetPredictions) PrepareRequest(w konan.TimeWindow) (*Request, error) {
	params := map[string]string{}
	if !w.StartTime.IsZero() {
		params["start_time"] = konan.FormatTime(w.StartTime)
	}
	if !w.EndTime.IsZero() {
		params["end_time"] = konan.FormatTime(w.EndTime)
	}
	return &Request{Params: params}, nil
}

func (GetPredictions) ProcessResponse(r *Response) (*konan.PredictionsPage, error) {
	page := &konan.PredictionsPage{}
	var err error
	if page.Count, err = optionalInt(r.JSON, "count"); err != nil {
		return nil, err
	}
	if page.Next, err = optionalString(r.JSON, "next"); err != nil {
		return nil, err
	}
	if page.Previous, err = optionalString(r.JSON, "previous"); err != nil {
		return nil, err
	}
	page.Results = []map[string]any{}
	if r.JSON["results"] == nil {
		return page, nil
	}
	results, err := lookupSlice(r.JSON, "results")
	if err != nil {
		return nil, err
	}
	for _, item := range results {
		entry, err := asObject(item, "results")
		if err != nil {
			return nil, err
		}
		page.Results = append(page.Results, entry)
	}
	return page, nil
}

// PaginatedPredictions decodes each page of the prediction listing into
// predictions, for use with a Paginator.
type PaginatedPredictions struct {
	GetPredictions
}

var _ Codec[konan.TimeWindow, Page[konan.Prediction]] = PaginatedPredictions{}

func (p PaginatedPredictions) ProcessResponse(r *Response) (Page[konan.Prediction], error) {
	raw, err := p.GetPredictions.ProcessResponse(r)
	if err != nil {
		return Page[konan.Prediction]{}, err
	}
	page := Page[konan.Prediction]{Items: make([]konan.Prediction, 0, len(raw.Results))}
	if raw.Next != nil {
		page.Next = *raw.Next
	}
	for _, entry := range raw.Results {
		prediction, err := decodePrediction(entry)
		if err != nil {
			return Page[konan.Prediction]{}, err
		}
		page.Items = append(page.Items, prediction)
	}
	return page, nil
}

func decodePrediction(entry map[string]any) (konan.Prediction, error) {
	id, err := lookupString(entry, "uuid")
	if err != nil {
		return konan.Prediction{}, err
	}
	return konan.Prediction{
		UUID:     id,
		Output:   entry["mls_output_json"],
		Features: entry["features_json"],
		Feedback: entry["feedback"],
	}, nil
}
