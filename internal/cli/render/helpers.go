package render

import (
	"errors"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error for the terminal. Step failures are prefixed with the
// step name; multi-line errors such as ambiguous artifact lists are kept intact.
func FormatError(err error) string {
	msg := err.Error()

	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		msg = titleCaser.String(string(stepErr.Step)) + " step failed: " + stepErr.Err.Error()
	} else if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// FormatStatus renders a verification status, e.g. VERIFIED -> "✓ Verified"
func FormatStatus(status models.VerificationStatus) string {
	label := titleCaser.String(strings.ToLower(string(status)))

	switch status {
	case models.VerificationStatusVerified:
		return color.New(color.FgGreen).Sprint("✓ " + label)
	case models.VerificationStatusSubmitted:
		return color.New(color.FgYellow).Sprint("⏳ " + label)
	case models.VerificationStatusFailed:
		return color.New(color.FgRed).Sprint("✗ " + label)
	case models.VerificationStatusSkipped:
		return color.New(color.Faint).Sprint("- " + label)
	default:
		return color.New(color.FgRed).Sprint("? " + label)
	}
}
