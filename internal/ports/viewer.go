package ports

// ViewerOpener opens a media file in the system viewer
type ViewerOpener interface {
	OpenFile(path string) error
}
