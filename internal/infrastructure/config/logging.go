package config

// LoggingConfig controls the structured log stream. Command output always
// goes to stdout, so logs default to stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	// Only read when output is "file"
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Adds source file:line to every record
	IncludeCaller bool `mapstructure:"include_caller"`
}
