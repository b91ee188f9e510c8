// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return http.StatusText(e.status)
	}
	return e.cause.Error()
}

func (e *httpError) Unwrap() error { return e.cause }

// HTTPError wraps cause with the status code to respond with.
func HTTPError(cause error, status int) error {
	return &httpError{cause: cause, status: status}
}

// BadRequest responds 400.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// NotFound responds 404.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// HandlerFunc is an http.HandlerFunc returning an error. Errors created by HTTPError
// respond their status, any other error responds 500.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc converts f to an http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// JSONContentType is the content type of every JSON response.
const JSONContentType = "application/json; charset=utf-8"

// ParseJSON decodes a JSON object, rejecting unknown fields.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON responds obj in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// EraVar parses the route variable name as an era index.
func EraVar(r *http.Request, name string) (npos.EraIndex, error) {
	n, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return npos.EraIndex(n), nil
}

// SessionVar parses the route variable name as a session index.
func SessionVar(r *http.Request, name string) (npos.SessionIndex, error) {
	n, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return npos.SessionIndex(n), nil
}

// AddressVar parses the route variable name as an address.
func AddressVar(r *http.Request, name string) (npos.Address, error) {
	addr, err := npos.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return npos.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}
