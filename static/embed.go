package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/* images/*
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}
