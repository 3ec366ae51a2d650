// Package jq post-processes structured command output with jq expressions.
package jq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdpkg "github.com/kong/tablectl/internal/cmd"
	cmdcommon "github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/predicate"
)

const (
	FlagName                    = "jq"
	ColorThemeFlagName          = "jq-color-theme"
	RawOutputFlagName           = "jq-raw-output"
	RawOutputFlagShort          = "r"
	DefaultExpressionConfigPath = "jq.default-expression"
	ColorThemeConfigPath        = "jq.color-theme"
	RawOutputConfigPath         = "jq.raw-output"
	DefaultTheme                = "friendly"
)

// Settings is the resolved --jq configuration of one command run.
type Settings struct {
	Filter    string
	ColorMode cmdcommon.ColorMode
	Theme     string
	RawOutput bool
}

// Enabled reports whether an expression should be applied.
func (s Settings) Enabled() bool {
	return strings.TrimSpace(s.Filter) != ""
}

// AddFlags registers the jq flags on a command that prints structured output.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(FlagName, "",
		fmt.Sprintf(`Transform json or yaml output with a jq expression.
- Config path: [ %s ]`, DefaultExpressionConfigPath))

	flags.String(ColorThemeFlagName, DefaultTheme,
		fmt.Sprintf(`Syntax highlighting theme for jq results written to a terminal.
- Config path: [ %s ]
- Examples   : [ friendly, github-dark, dracula ]`, ColorThemeConfigPath))

	flags.BoolP(RawOutputFlagName, RawOutputFlagShort, false,
		fmt.Sprintf(`Print string results without JSON quotes, one per line.
- Config path: [ %s ]`, RawOutputConfigPath))
}

// BindFlags binds the jq flags to their config paths.
func BindFlags(cfg config.Hook, flags *pflag.FlagSet) error {
	if cfg == nil || flags == nil {
		return nil
	}
	for flagName, path := range map[string]string{
		ColorThemeFlagName: ColorThemeConfigPath,
		RawOutputFlagName:  RawOutputConfigPath,
	} {
		f := flags.Lookup(flagName)
		if f == nil {
			continue
		}
		if err := cfg.BindFlag(path, f); err != nil {
			return err
		}
	}
	return nil
}

// ResolveSettings reads the jq flags of command, falling back to cfg.
// A --jq given with an empty value means the identity expression.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{Theme: DefaultTheme, ColorMode: cmdcommon.ColorModeAuto}
	if command == nil || command.Flags().Lookup(FlagName) == nil {
		return settings, nil
	}
	flags := command.Flags()

	expr, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	expr = strings.TrimSpace(expr)
	switch {
	case flags.Changed(FlagName) && expr == "":
		expr = "."
	case !flags.Changed(FlagName) && cfg != nil:
		expr = strings.TrimSpace(cfg.GetString(DefaultExpressionConfigPath))
	}
	settings.Filter = expr

	if cfg == nil {
		settings.RawOutput, err = flags.GetBool(RawOutputFlagName)
		return settings, err
	}

	mode, err := cmdcommon.ColorModeStringToIota(
		strings.ToLower(strings.TrimSpace(cfg.GetString(cmdcommon.ColorConfigPath))))
	if err != nil {
		return Settings{}, &cmdpkg.ConfigurationError{Err: err}
	}
	settings.ColorMode = mode
	if theme := strings.TrimSpace(cfg.GetString(ColorThemeConfigPath)); theme != "" {
		settings.Theme = theme
	}
	settings.RawOutput = cfg.GetBool(RawOutputConfigPath)
	return settings, nil
}

// Validate rejects jq settings that cannot be honored for outType.
func (s Settings) Validate(outType cmdcommon.OutputFormat) error {
	if s.RawOutput && !s.Enabled() {
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName),
		}
	}
	if !s.Enabled() {
		return nil
	}
	if s.RawOutput && outType != cmdcommon.JSON {
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json", RawOutputFlagName),
		}
	}
	if outType != cmdcommon.JSON && outType != cmdcommon.YAML {
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
		}
	}
	return nil
}

// Apply runs the configured expression over payload. When the result was
// written to out directly (raw or colorized output) written is true and the
// caller prints nothing; otherwise result replaces payload for printing.
func Apply(payload any, outType cmdcommon.OutputFormat, s Settings, out io.Writer) (result any, written bool, err error) {
	if !s.Enabled() {
		return payload, false, nil
	}
	if err := s.Validate(outType); err != nil {
		return nil, false, err
	}

	results, err := Evaluate(payload, s.Filter)
	if err != nil {
		return nil, false, err
	}

	if s.RawOutput {
		return nil, true, writeRaw(results, out)
	}

	result = collapse(results)
	if outType != cmdcommon.JSON || !ShouldUseColor(s.ColorMode, out) {
		return result, false, nil
	}
	switch result.(type) {
	case map[string]any, []any:
	default:
		return result, false, nil
	}
	formatted, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode filtered result: %w", err)
	}
	_, err = fmt.Fprintln(out, strings.TrimRight(Colorize(string(formatted), s.Theme), "\n"))
	return nil, true, err
}

// Evaluate runs expr over the JSON form of payload and returns every value
// it emits.
func Evaluate(payload any, expr string) ([]any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = "."
	}
	code, err := predicate.JQ(expr)
	if err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output before applying jq filter: %w", err)
	}
	var input any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	var results []any
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
}

func collapse(results []any) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return results
	}
}

func writeRaw(results []any, out io.Writer) error {
	for _, v := range results {
		line, ok := v.(string)
		if !ok {
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode filtered result: %w", err)
			}
			line = string(encoded)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

var terminalDetector = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShouldUseColor resolves mode for out. Auto colors terminals unless
// NO_COLOR is set.
func ShouldUseColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	}
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	fw, ok := out.(interface{ Fd() uintptr })
	return ok && terminalDetector(fw.Fd())
}

// Colorize highlights JSON text for a 256 color terminal. The input is
// returned unchanged when highlighting fails.
func Colorize(formatted, theme string) string {
	lexer := lexers.Get("json")
	formatter := formatters.Get("terminal256")
	if lexer == nil || formatter == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return formatted
	}
	return buf.String()
}
