package model

// Path represents a file system path.
type Path string

// File identifies a source file on disk.
type File struct {
	// FullPath locates the file for reading and writing.
	FullPath Path
	// ShortPath is the project-relative form used in reports and output.
	ShortPath Path
	// Hash is a stable fingerprint of the file contents.
	Hash string
}

// Source is one source unit processed independently by the transform hook.
type Source struct {
	Origin *File
}
