package source

import (
	"encoding/json"

	"copymanga/internal/domain"
)

const codeSuccess = 200

// envelope wraps every api response.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Results *T     `json:"results"`
}

func decode[T any](body []byte) (envelope[T], error) {
	var env envelope[T]

	if err := json.Unmarshal(body, &env); err != nil {
		return envelope[T]{}, &domain.DecodeError{Err: err}
	}

	return env, nil
}

func (e envelope[T]) ok() error {
	if e.Code != codeSuccess {
		return domain.NewAPIError(e.Code, e.Message)
	}

	return nil
}

// result returns the payload of a successful envelope and fails when it is missing.
func (e envelope[T]) result() (*T, error) {
	if err := e.ok(); err != nil {
		return nil, err
	}

	if e.Results == nil {
		return nil, domain.NewAPIError(e.Code, e.Message)
	}

	return e.Results, nil
}
