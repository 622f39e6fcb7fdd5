package logging

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskman/internal/utils"
)

//go:embed event.schema.json
var eventSchemaJSON string

const eventSchemaURL = "taskman://event.schema.json"

var (
	eventSchemaOnce sync.Once
	eventSchema     *jsonschema.Schema
	eventSchemaErr  error
)

func compiledEventSchema() (*jsonschema.Schema, error) {
	eventSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(eventSchemaURL, strings.NewReader(eventSchemaJSON)); err != nil {
			eventSchemaErr = fmt.Errorf("add event schema: %w", err)
			return
		}
		eventSchema, eventSchemaErr = compiler.Compile(eventSchemaURL)
		if eventSchemaErr != nil {
			eventSchemaErr = fmt.Errorf("compile event schema: %w", eventSchemaErr)
		}
	})
	return eventSchema, eventSchemaErr
}

// LineError describes a session log line that is not a valid event.
type LineError struct {
	Line    int
	Path    string
	Message string
}

func (e *LineError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// ValidateEvent checks one encoded event against the event schema.
func ValidateEvent(data []byte) error {
	schema, err := compiledEventSchema()
	if err != nil {
		return err
	}
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return &LineError{Message: err.Error()}
	}
	if err := schema.Validate(obj); err != nil {
		return schemaError(err)
	}
	return nil
}

// ValidateSessionLog checks every line of a session log and returns the
// number of valid events. Invalid lines are reported together.
func ValidateSessionLog(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var errs []error
	valid := 0
	line := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := ValidateEvent([]byte(text)); err != nil {
			var le *LineError
			if errors.As(err, &le) {
				le.Line = line
			}
			errs = append(errs, err)
			continue
		}
		valid++
	}
	if err := scanner.Err(); err != nil {
		return valid, fmt.Errorf("read log file: %w", err)
	}
	return valid, errors.Join(errs...)
}

// schemaError reduces a validation error to its first leaf cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &LineError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &LineError{Path: utils.JSONPointerToPath(ve.InstanceLocation), Message: ve.Message}
}
