package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// VerifyOutcome pairs a verified record with the error it ended with, if any
type VerifyOutcome struct {
	Deployment *models.Deployment
	Result     *usecase.VerifyResult
	Err        error
}

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// RenderVerifyResult renders the result of verifying a specific deployment
func (r *VerifyRenderer) RenderVerifyResult(result *usecase.VerifyResult) error {
	deployment := result.Deployment

	if result.Skipped {
		color.New(color.FgYellow).Fprintf(r.out, "Contract %s is already verified. Use --force to re-verify.\n", deployment.GetDisplayName())
		return nil
	}

	switch deployment.Verification.Status {
	case models.VerificationStatusVerified:
		color.New(color.FgGreen).Fprintln(r.out, "✓ Verification completed successfully!")
	case models.VerificationStatusSubmitted:
		color.New(color.FgYellow).Fprintln(r.out, "⏳ Verification submitted, use --wait to poll for the result")
	}
	r.showVerificationStatus(deployment)
	return nil
}

// RenderBatch renders the outcome of verifying several deployments
func (r *VerifyRenderer) RenderBatch(outcomes []VerifyOutcome) error {
	if len(outcomes) == 0 {
		color.New(color.FgYellow).Fprintln(r.out, "No unverified deployed contracts found. Use --force to re-verify all contracts.")
		return nil
	}

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Verified %d deployed contracts:\n", len(outcomes))

	succeeded := 0
	for _, outcome := range outcomes {
		deployment := outcome.Deployment
		fmt.Fprintf(r.out, "  chain:%d/%s %s\n", deployment.ChainID, deployment.ContractName, deployment.Address)

		switch {
		case outcome.Err != nil:
			color.New(color.FgRed).Fprintf(r.out, "    ✗ %s\n", outcome.Err)
		case outcome.Result != nil && outcome.Result.Skipped:
			color.New(color.Faint).Fprintf(r.out, "    - %s\n", outcome.Result.Reason)
			succeeded++
		default:
			fmt.Fprintf(r.out, "    %s", FormatStatus(outcome.Result.Deployment.Verification.Status))
			if id := outcome.Result.Deployment.Verification.VerificationID; id != "" {
				fmt.Fprintf(r.out, " (id %s)", id)
			}
			fmt.Fprintln(r.out)
			succeeded++
		}
	}

	fmt.Fprintf(r.out, "\nVerification complete: %d/%d successful\n", succeeded, len(outcomes))
	return nil
}

// showVerificationStatus displays the verification status details
func (r *VerifyRenderer) showVerificationStatus(deployment *models.Deployment) {
	verification := deployment.Verification

	fmt.Fprintln(r.out, "\nVerification Status:")
	verifier := verification.Verifier
	if verifier == "" {
		verifier = "verifier"
	}
	fmt.Fprintf(r.out, "  %s: %s", titleCaser.String(verifier), FormatStatus(verification.Status))
	if verification.URL != "" {
		fmt.Fprintf(r.out, " - %s", verification.URL)
	}
	fmt.Fprintln(r.out)
	if verification.VerificationID != "" {
		fmt.Fprintf(r.out, "  Verification ID: %s\n", verification.VerificationID)
	}
	if verification.Reason != "" {
		fmt.Fprintf(r.out, "  Reason: %s\n", verification.Reason)
	}
}
