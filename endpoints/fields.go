package endpoints

import (
	"time"

	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/pkg/errors"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidField = errors.New("invalid field")
)

func lookup(m map[string]any, key string) (any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, errors.Wrap(ErrMissingField, key)
	}
	return v, nil
}

func lookupString(m map[string]any, key string) (string, error) {
	v, err := lookup(m, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidField, "%s: expected string, got %T", key, v)
	}
	return s, nil
}

func lookupInt(m map[string]any, key string) (int, error) {
	v, err := lookup(m, key)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidField, "%s: expected number, got %T", key, v)
	}
	return int(f), nil
}

func lookupMap(m map[string]any, key string) (map[string]any, error) {
	v, err := lookup(m, key)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidField, "%s: expected object, got %T", key, v)
	}
	return obj, nil
}

func lookupSlice(m map[string]any, key string) ([]any, error) {
	v, err := lookup(m, key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidField, "%s: expected list, got %T", key, v)
	}
	return list, nil
}

func lookupTime(m map[string]any, key string) (time.Time, error) {
	s, err := lookupString(m, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := konan.ParseTime(s)
	if err != nil {
		return time.Time{}, errors.Wrap(ErrInvalidField, err.Error())
	}
	return t, nil
}

// optional variants treat an absent or null key as the zero value

func optionalString(m map[string]any, key string) (*string, error) {
	if m[key] == nil {
		return nil, nil
	}
	s, err := lookupString(m, key)
	return &s, err
}

func optionalInt(m map[string]any, key string) (*int, error) {
	if m[key] == nil {
		return nil, nil
	}
	i, err := lookupInt(m, key)
	return &i, err
}

func asObject(v any, key string) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidField, "%s: expected object, got %T", key, v)
	}
	return obj, nil
}

func decodeDeployment(m map[string]any) (konan.Deployment, error) {
	var d konan.Deployment
	var err error
	if d.UUID, err = lookupString(m, "uuid"); err != nil {
		return d, err
	}
	if d.Name, err = lookupString(m, "name"); err != nil {
		return d, err
	}
	if d.CreatedAt, err = lookupTime(m, "created_at"); err != nil {
		return d, err
	}
	return d, nil
}

func decodeModel(m map[string]any) (konan.Model, error) {
	var model konan.Model
	var err error
	if model.UUID, err = lookupString(m, "uuid"); err != nil {
		return model, err
	}
	if model.Name, err = lookupString(m, "name"); err != nil {
		return model, err
	}
	if model.CreatedAt, err = lookupTime(m, "created_at"); err != nil {
		return model, err
	}
	state, err := lookupString(m, "state")
	if err != nil {
		return model, err
	}
	model.State = konan.ParseModelState(state)
	return model, nil
}
