package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ifp/vicidial-cli/internal/api"
)

const (
	exitOK              = 0
	exitGeneric         = 1
	exitUsage           = 2
	exitNetwork         = 8
	exitRemoteError     = 9
	exitUnknownResponse = 10
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if code := exitCodeFromStructured(err); code != 0 {
		return code
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func exitCodeFromStructured(err error) int {
	structured := api.StructuredErrorFromError(err)
	if structured == nil {
		return 0
	}
	switch structured.Code {
	case api.ErrCodeConfiguration:
		return exitUsage
	case api.ErrCodeTransport, api.ErrCodeTimeout:
		return exitNetwork
	case api.ErrCodeRemoteError:
		return exitRemoteError
	case api.ErrCodeUnknownResponse:
		return exitUnknownResponse
	default:
		return 0
	}
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts at most",
		"accepts between",
		"invalid argument",
		"invalid parameter",
		"invalid output format",
		"invalid filter expression",
		"invalid protocol",
		"invalid host",
		"must be",
		"is required",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
