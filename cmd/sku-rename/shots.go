package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// shot pairs a photo on disk with the descriptor it should be exported as.
type shot struct {
	File       string `yaml:"file"`
	Descriptor string `yaml:"descriptor"`
}

// shotList is the YAML form of a pack job:
//
//	sku: 63755
//	images:
//	  - file: IMG_0001.ARW
//	    descriptor: front
type shotList struct {
	SKU    string `yaml:"sku"`
	Images []shot `yaml:"images"`
}

// loadShotList reads a shot list. Relative image paths are resolved against
// the directory holding the list.
func loadShotList(path string) (*shotList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shot list: %w", err)
	}

	var list shotList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse shot list %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, s := range list.Images {
		if s.File == "" {
			return nil, fmt.Errorf("shot list %s: image %d has no file", path, i+1)
		}
		if !filepath.IsAbs(s.File) {
			list.Images[i].File = filepath.Join(base, s.File)
		}
	}
	return &list, nil
}

// parseShotArgs reads positional arguments of the form descriptor=path.
func parseShotArgs(args []string) ([]shot, error) {
	shots := make([]shot, 0, len(args))
	for _, arg := range args {
		d, file, ok := strings.Cut(arg, "=")
		if !ok || d == "" || file == "" {
			return nil, fmt.Errorf("invalid argument %q, expected descriptor=path", arg)
		}
		shots = append(shots, shot{File: file, Descriptor: d})
	}
	return shots, nil
}
