// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
)

// FailureClass partitions external-service failures for retry decisions.
type FailureClass int

const (
	// ClassTransient marks failures expected to resolve on retry:
	// timeouts, rate limits, server overload.
	ClassTransient FailureClass = iota + 1

	// ClassPermanent marks failures retrying cannot fix: bad
	// credentials, malformed requests.
	ClassPermanent
)

// String returns the class name for logging.
func (c FailureClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// permanentMarkers identify failures that retrying cannot fix. The
// underlying client surfaces HTTP status codes in error text, so
// matching is on markers rather than typed errors.
var permanentMarkers = []string{
	"status code: 400",
	"status code: 401",
	"status code: 403",
	"status code: 404",
	"status code: 422",
	"invalid api key",
	"incorrect api key",
	"invalid_request_error",
	"unauthorized",
	"authentication",
}

// transientMarkers identify failures worth retrying.
var transientMarkers = []string{
	"status code: 408",
	"status code: 429",
	"status code: 500",
	"status code: 502",
	"status code: 503",
	"status code: 504",
	"rate limit",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"temporarily unavailable",
	"no such host",
	"unexpected eof",
}

// Classify assigns a failure class to an external-service error.
//
// Timeouts, context deadline expiry, network failures and 429/5xx
// responses are transient. Authentication and malformed-request
// responses are permanent. Unrecognized errors default to transient:
// retries are bounded anyway, and flaky gateways are the common case
// for hosted model services.
func Classify(err error) FailureClass {
	if err == nil {
		return ClassTransient
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		// A truncated or dropped response is a connection-level hiccup.
		return ClassTransient
	}
	if errors.Is(err, context.Canceled) {
		// Cancellation is surfaced to the caller, never retried.
		return ClassPermanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return ClassPermanent
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return ClassTransient
		}
	}

	return ClassTransient
}
