// Package util holds the file plumbing shared by the host and its binary.
package util

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OpenLog opens path for appending, discarding log lines when it cannot.
func OpenLog(path string, mode os.FileMode) (file io.Writer) {

	var err error
	file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err.Error())
		file = io.Discard
	}

	return
}

// CloseLog closes a log opened with OpenLog.
func CloseLog(file io.Writer) {

	actually, ok := file.(*os.File)
	if ok {
		actually.Close()
	}
}

// LoadYaml unmarshals the file at path into obj.
func LoadYaml(obj any, path string) (err error) {

	data, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read from %s", path)
		return
	}

	err = yaml.Unmarshal(data, obj)
	err = errors.Wrapf(err, "failed to unmarshal %s", path)
	return
}

// WriteYaml marshals obj to path, replacing what is there.
func WriteYaml(obj any, path string, mode os.FileMode) (err error) {

	data, err := yaml.Marshal(obj)
	if err != nil {
		err = errors.Wrapf(err, "failed to marshal")
		return
	}

	err = os.WriteFile(path, data, mode)
	err = errors.Wrapf(err, "failed to write to %s", path)
	return
}

// WriteSample writes data to path unless a file is already there,
// reporting whether it wrote.
func WriteSample(data []byte, path string, mode os.FileMode) (wrote bool, err error) {

	_, err = os.Stat(path)
	switch {
	case err == nil:
		return
	case !os.IsNotExist(err):
		err = errors.Wrapf(err, "failed to stat %s", path)
		return
	}

	err = os.WriteFile(path, data, mode)
	if err != nil {
		err = errors.Wrapf(err, "failed to write to %s", path)
		return
	}
	wrote = true
	return
}
