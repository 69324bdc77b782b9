package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed all:site/*
var siteFS embed.FS

// GetFileSystem returns an http.FileSystem for the embedded status page.
func GetFileSystem() http.FileSystem {
	fsys, err := fs.Sub(siteFS, "site")
	if err != nil {
		panic(err)
	}
	return http.FS(fsys)
}

// Index returns the status page HTML.
func Index() []byte {
	data, err := siteFS.ReadFile("site/index.html")
	if err != nil {
		panic(err)
	}
	return data
}
