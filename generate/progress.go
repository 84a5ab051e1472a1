package generate

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
)

// ProgressEmitter reports pipeline progress to a user or a machine.
//
// Implementations include:
// - CLIEmitter: Pretty-printed terminal output using pterm
// - JSONEmitter: One JSON event per line, for CI pipelines
type ProgressEmitter interface {
	// EmitStage announces a pipeline stage, e.g. "fetch" or "render"
	EmitStage(stage string, message string)

	// EmitTarget reports one finished target
	EmitTarget(result TargetResult)

	// EmitComplete prints the summary of a run
	EmitComplete(summary map[string]interface{})

	EmitError(stage string, err error)
	EmitInfo(message string)
}

// ProgressEvent represents a structured JSON progress event
type ProgressEvent struct {
	Type      string                 `json:"type"` // "stage", "target", "complete", "error", "info"
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// CLIEmitter outputs pretty-printed progress to terminal using pterm
type CLIEmitter struct {
	verbosity int
}

// NewCLIEmitter creates a CLI progress emitter for terminal output
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity}
}

func (e *CLIEmitter) EmitStage(stage string, message string) {
	if e.verbosity >= 1 {
		pterm.Printf("🔄 %s: %s\n", pterm.LightCyan(stage), message)
	}
}

func (e *CLIEmitter) EmitTarget(result TargetResult) {
	if result.Check == nil {
		pterm.Printf("✅ %s: wrote %s files to %s\n",
			pterm.LightCyan(result.Target), pterm.Green(fmt.Sprintf("%d", result.Files)), result.Dir)
		return
	}
	if result.Check.UpToDate {
		pterm.Printf("✅ %s: %s is up to date\n", pterm.LightCyan(result.Target), result.Dir)
		return
	}
	pterm.Printf("❌ %s: %s is out of date\n", pterm.LightCyan(result.Target), result.Dir)
	for _, p := range result.Check.Changed {
		pterm.Printf("  %s %s\n", pterm.Yellow("changed:"), p)
	}
	for _, p := range result.Check.Missing {
		pterm.Printf("  %s %s\n", pterm.Red("missing:"), p)
	}
	for _, p := range result.Check.Extra {
		pterm.Printf("  %s %s\n", pterm.Gray("extra:"), p)
	}
}

func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	pterm.Success.Println("Generation complete!")
	if e.verbosity >= 1 {
		for key, value := range summary {
			pterm.Printf("  %s: %v\n", key, value)
		}
	}
}

func (e *CLIEmitter) EmitError(stage string, err error) {
	pterm.Error.Printf("Error in %s: %v\n", stage, err)
}

func (e *CLIEmitter) EmitInfo(message string) {
	if e.verbosity >= 1 {
		pterm.Info.Println(message)
	}
}

// JSONEmitter writes structured JSON events
type JSONEmitter struct {
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON progress emitter writing to w
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(w)}
}

func (e *JSONEmitter) emit(kind string, data map[string]interface{}) {
	_ = e.encoder.Encode(ProgressEvent{Type: kind, Timestamp: time.Now(), Data: data})
}

func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.emit("stage", map[string]interface{}{"stage": stage, "message": message})
}

func (e *JSONEmitter) EmitTarget(result TargetResult) {
	data := map[string]interface{}{
		"target": result.Target,
		"dir":    result.Dir,
		"files":  result.Files,
	}
	if result.Check != nil {
		data["up_to_date"] = result.Check.UpToDate
		data["changed"] = result.Check.Changed
		data["missing"] = result.Check.Missing
		data["extra"] = result.Check.Extra
	}
	e.emit("target", data)
}

func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.emit("complete", summary)
}

func (e *JSONEmitter) EmitError(stage string, err error) {
	e.emit("error", map[string]interface{}{"stage": stage, "error": err.Error()})
}

func (e *JSONEmitter) EmitInfo(message string) {
	e.emit("info", map[string]interface{}{"message": message})
}

type nopEmitter struct{}

func (nopEmitter) EmitStage(string, string)            {}
func (nopEmitter) EmitTarget(TargetResult)             {}
func (nopEmitter) EmitComplete(map[string]interface{}) {}
func (nopEmitter) EmitError(string, error)             {}
func (nopEmitter) EmitInfo(string)                     {}
