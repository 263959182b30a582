// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads session command bodies and chi route parameters.
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/fichas/internal/platform/validate"
)

// maxBodyBytes bounds JSON payloads; session commands are tiny.
const maxBodyBytes = 64 << 10

// DecodeJSON decodes the body into target and fails with
// [validate.ErrInvalidJSON] on malformed JSON or unknown fields. An empty body
// leaves target untouched.
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}
