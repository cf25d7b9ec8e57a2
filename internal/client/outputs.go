package client

import (
	"net/url"
	"strings"

	"resumetailor/internal/types"
)

// BuildOutputFiles turns repository-relative output paths into download
// descriptors for result id. The display name is the final path segment.
func BuildOutputFiles(baseURL string, paths []string, id string) []types.OutputFile {
	base := strings.TrimRight(baseURL, "/")
	escapedID := url.PathEscape(id)
	files := make([]types.OutputFile, 0, len(paths))
	for _, path := range paths {
		name := path
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			name = path[idx+1:]
		}
		escapedName := url.PathEscape(name)
		files = append(files, types.OutputFile{
			Name:        name,
			DownloadURL: base + "/tailor/download/" + escapedID + "/" + escapedName,
			PreviewURL:  base + "/tailor/preview/" + escapedID + "/" + escapedName,
		})
	}
	return files
}

// OutputFiles builds output descriptors against this client's backend
func (c *Client) OutputFiles(paths []string, id string) []types.OutputFile {
	return BuildOutputFiles(c.baseURL, paths, id)
}
