package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// fileSchema constrains the YAML config file. #Config is closed, so unknown
// keys are rejected.
const fileSchema = `
#Config: {
	api_url?:    =~"^https?://"
	dry_run?:    bool
	timeout?:    =~"^[0-9]+(\\.[0-9]+)?(ms|s|m|h)$"
	rate_limit?: number & >=0
	rate_burst?: int & >=1
	log_file?:   string
	log_level?:  "debug" | "info" | "warn" | "error"
	journal?:    string
	columns?: [...string] & [_, ...]
}
`

// validateFile checks a decoded YAML document against fileSchema.
func validateFile(raw map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(fileSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
