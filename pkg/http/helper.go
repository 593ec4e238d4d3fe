package http

import (
	"net/http"
	"salonbook/pkg/model"
	apperrors "salonbook/pkg/errors"
	"strconv"
)

func QueryDate(r *http.Request, name string) (model.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return model.Date{}, apperrors.InvalidInput("missing " + name + " parameter")
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, apperrors.InvalidInput("invalid " + name + " parameter: " + raw)
	}
	return d, nil
}

// QueryInt returns fallback when the parameter is absent.
func QueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + raw)
	}
	return v, nil
}

func QueryRequired(r *http.Request, name string) (string, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", apperrors.InvalidInput("missing " + name + " parameter")
	}
	return raw, nil
}
