package reviewdiff

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
)

// ArchiveFile is one member of a decoded upload archive.
type ArchiveFile struct {
	Name    string
	Content string
}

// DecodeArchive reads a gzipped tar archive (the format uploads are stored
// in, see pkg/http/upload.go) back into its member files, in tar order.
func DecodeArchive(data []byte) ([]ArchiveFile, error) {
	gzrd, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var files []ArchiveFile
	rd := tar.NewReader(gzrd)
	for {
		hdr, err := rd.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		content, err := io.ReadAll(rd)
		if err != nil {
			return nil, err
		}
		files = append(files, ArchiveFile{Name: hdr.Name, Content: string(content)})
	}

	if err := gzrd.Close(); err != nil {
		return nil, err
	}
	return files, nil
}
