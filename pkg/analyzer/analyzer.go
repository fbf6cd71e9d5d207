// Package analyzer assembles failure dossiers from non-passing
// verification results.
//
// Analyze is a pure function: no I/O, no clock, no mutation of its
// inputs. It packages "what failed" for the external corrector while the
// engine decides what to do about it, keeping diagnosis and policy apart.
package analyzer

import (
	"github.com/covenantcc/crucible/pkg/api"
)

// Analyze builds a FailureDossier for a non-passing result. The prior
// history is carried into the dossier unchanged; the caller retains
// ownership of the slice contents and must not mutate them afterwards.
//
// Analyze returns nil for a passing result: a dossier only exists when
// there is a failure to describe.
func Analyze(directive string, req api.VerificationRequest, res *api.VerificationResult, history []api.AttemptRecord) *api.FailureDossier {
	if res == nil || res.Success {
		return nil
	}

	return &api.FailureDossier{
		Directive:     directive,
		CandidateCode: req.CandidateCode,
		TestCode:      req.TestCode,
		ErrorText:     res.ErrorText(),
		History:       history,
	}
}
