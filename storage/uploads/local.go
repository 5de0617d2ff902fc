// Package uploads stores payment receipts on the local filesystem.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/payment"
)

type localStore struct {
	root string
}

var _ payment.ReceiptStore = (*localStore)(nil)

// NewLocalStore returns a ReceiptStore rooted at <WorkDir>/<UploadsDir>/receipts.
func NewLocalStore(conf *core.Config) (payment.ReceiptStore, error) {
	root := filepath.Join(conf.WorkDir, conf.UploadsDir, "receipts")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &localStore{root: root}, nil
}

func (s *localStore) Save(studentID, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s-%d%s", studentID, time.Now().UnixNano(), filepath.Ext(filename))

	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", errors.Wrap(err, "creating receipt file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing receipt file")
	}
	return name, nil
}

func (s *localStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.Base(path)))
	return f, errors.Wrap(err, "opening receipt file")
}

func (s *localStore) Remove(path string) error {
	return errors.Wrap(os.Remove(filepath.Join(s.root, filepath.Base(path))), "removing receipt file")
}
