package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashBlockSize is the read block size used when fingerprinting files.
// Files are streamed so hashing scales to large PDFs.
const hashBlockSize = 64 * 1024

// HashFile computes the content fingerprint of the file at path.
// Byte-identical content always produces the same fingerprint; any byte
// difference changes it with overwhelming probability. The fingerprint
// detects changes, it is not a security boundary.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	hasher := md5.New()
	buf := make([]byte, hashBlockSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file for hashing: %w", err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
