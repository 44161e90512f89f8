package cli

const (
	// TabWidth is the padding between columns in tabular output.
	TabWidth = 2

	// Number of arguments expected by the config set command.
	setCommandArgs = 2
)
