package filestorage

// TextStorage stores small plain-text artifacts by name.
type TextStorage interface {
	// SaveText writes data under name, replacing any previous content, and
	// returns the path it was written to.
	SaveText(name, data string) (string, error)

	// ReadText returns the content previously stored at path.
	ReadText(path string) (string, error)

	// GetFullPath returns the filesystem path a name is stored at.
	GetFullPath(name string) string
}
