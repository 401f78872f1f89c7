package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"jeff/internal/codec"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

// addCorpusSeeds adds every module under testdata, in the requested
// encoding. Text modules are re-encoded when binary seeds are wanted.
func addCorpusSeeds(f *testing.F, format codec.Format) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все модули
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !codec.IsModulePath(path) {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if format == codec.Text {
			f.Add(clampSeed(src))
			return nil
		}
		m, err := codec.DecodeText(src)
		if err != nil {
			return nil
		}
		if bin, err := codec.EncodeBinary(m); err == nil {
			f.Add(clampSeed(bin))
		}
		return nil
	})
	// добавляем хотя бы минимальные примеры на случай пустого testdata
	f.Add([]byte{})
	if format == codec.Binary {
		f.Add(append(codec.Magic[:], 0x90))
	} else {
		f.Add([]byte("version: 1\nentrypoint: 0\nstrings: []\nfunctions: []\n"))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
