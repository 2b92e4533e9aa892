package transcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"quipt/internal/core/domain"
)

const screenWindow = 512

var (
	playlistMarker = []byte("#EXT")
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
)

// screenPlaylist rejects files that open like an M3U/HLS playlist, whatever their extension.
// Demuxers accept such playlists as input and will then fetch the URLs they reference.
func screenPlaylist(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("could not open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, screenWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("could not read upload: %w", err)
	}
	head = head[:n]

	head = bytes.TrimPrefix(head, utf8BOM)
	head = bytes.TrimLeft(head, " \t\r\n")
	if bytes.HasPrefix(head, playlistMarker) {
		return fmt.Errorf("%w: file starts with a playlist marker", domain.ErrSuspiciousContent)
	}
	return nil
}
