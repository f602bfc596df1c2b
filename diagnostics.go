// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"fmt"
	"sync"

	"github.com/open-cos/gocos/logger"
)

// Severity is the severity of a diagnostic reported by the tokenizer or
// parser while recovering from a non-fatal problem. See spec §6, §7.
type Severity int

const (
	Warning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// DiagnosticHandler is the external collaborator consumed by the tokenizer
// and parser to report non-fatal problems (spec §6). Implementations must
// be non-blocking.
type DiagnosticHandler interface {
	Diagnostic(sev Severity, msg string)
}

// loggingDiagnostics routes diagnostics to the package logger. It is the
// default handler the constructors use when passed a nil
// DiagnosticHandler, so that gocos
// behaves usefully out of the box, the same way the teacher wires a
// package-level logger.LogFunc by default.
type loggingDiagnostics struct{}

func (loggingDiagnostics) Diagnostic(sev Severity, msg string) {
	switch sev {
	case Warning:
		logger.Debug(fmt.Sprintf("diagnostic: %s", msg), true)
	default:
		logger.Error(fmt.Sprintf("diagnostic: %s", msg))
	}
}

// RecordingDiagnostics accumulates diagnostics in memory. Tests use this
// to assert on the warnings/errors a parse run produced, the same role
// the teacher's recording logger.LogFunc plays in its own tests.
type RecordingDiagnostics struct {
	mu    sync.Mutex
	Items []Diagnostic
}

// Diagnostic is one recorded severity+message pair.
type Diagnostic struct {
	Severity Severity
	Message  string
}

func (r *RecordingDiagnostics) Diagnostic(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, Diagnostic{Severity: sev, Message: msg})
}

// Warnings returns the recorded warning messages, in order.
func (r *RecordingDiagnostics) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, d := range r.Items {
		if d.Severity == Warning {
			out = append(out, d.Message)
		}
	}
	return out
}

// Errors returns the recorded error messages, in order.
func (r *RecordingDiagnostics) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, d := range r.Items {
		if d.Severity == SeverityError {
			out = append(out, d.Message)
		}
	}
	return out
}
