package model

// TransformReport records the outcome of one unit's transform for display and
// persistence.
type TransformReport struct {
	Unit   string `yaml:"unit"`
	Status string `yaml:"status"`
	// Hash fingerprints the unit before the transform, so a saved report
	// can be matched against the tree it was produced from.
	Hash        string   `yaml:"hash,omitempty"`
	MockedNames []string `yaml:"mocked_names,omitempty"`
	Rewritten   []string `yaml:"rewritten,omitempty"`
	Failure     string   `yaml:"failure,omitempty"`
	Diff        string   `yaml:"diff,omitempty"`
}

// RunSummary aggregates a whole run.
type RunSummary struct {
	Units     int
	Rewritten int
	Unchanged int
	Failed    int
	// Written is true when rewrites were applied in place rather than
	// previewed.
	Written bool
}

// InventoryRow is one line of the list command's output.
type InventoryRow struct {
	Unit            string
	Registrations   int
	ServerFunctions int
}
