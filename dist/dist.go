// Package dist creates source distribution archives.
package dist

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rotisserie/eris"

	"github.com/stoneforge/bgen/log"
	"github.com/stoneforge/bgen/util"
)

// Create packs the project sources into `<buildDir>/<archiveName>.tar.gz`.
// All entries are placed below a single `<archiveName>/` root directory.
// When the source directory is a git repository, only files tracked at HEAD
// are packed; otherwise the whole source tree (minus the build directory)
// is.
func Create(sourceDir, buildDir, archiveName string) (string, error) {
	files, err := sourceFiles(sourceDir, buildDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", eris.Errorf("no source files found in %s", sourceDir)
	}

	if err := os.MkdirAll(buildDir, util.DirMode); err != nil {
		return "", eris.Wrap(err, "failed to create the build directory")
	}

	archivePath := path.Join(buildDir, archiveName+".tar.gz")
	archive, err := os.Create(archivePath)
	if err != nil {
		return "", eris.Wrap(err, "failed to create the archive")
	}
	defer archive.Close()

	gzWriter := gzip.NewWriter(archive)
	tarWriter := tar.NewWriter(gzWriter)

	for _, rel := range files {
		if err := addFile(tarWriter, sourceDir, archiveName, rel); err != nil {
			return "", eris.Wrapf(err, "failed to archive %q", rel)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return "", eris.Wrap(err, "failed to finish the archive")
	}
	if err := gzWriter.Close(); err != nil {
		return "", eris.Wrap(err, "failed to finish the archive")
	}

	return archivePath, nil
}

func addFile(tarWriter *tar.Writer, sourceDir, archiveName, rel string) error {
	filePath := filepath.Join(sourceDir, rel)
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = path.Join(archiveName, filepath.ToSlash(rel))

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(tarWriter, file)
	return err
}

// sourceFiles returns the source-relative paths of all files to pack, sorted.
func sourceFiles(sourceDir, buildDir string) ([]string, error) {
	files, err := trackedFiles(sourceDir)
	switch {
	case err == nil:
		return files, nil
	case eris.Is(err, git.ErrRepositoryNotExists):
		log.Debug("'%s' is not a git repository. Packing the whole source tree.\n", sourceDir)
	case eris.Is(err, plumbing.ErrReferenceNotFound):
		// Fresh `git init` without any commit.
		log.Debug("Repository at '%s' has no commits. Packing the whole source tree.\n", sourceDir)
	default:
		return nil, err
	}

	return walkedFiles(sourceDir, buildDir)
}

// trackedFiles enumerates the files tracked at HEAD of the repository at
// `sourceDir`.
func trackedFiles(sourceDir string) ([]string, error) {
	repo, err := git.PlainOpen(sourceDir)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve HEAD")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve the HEAD commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, eris.Wrap(err, "failed to read the HEAD tree")
	}

	files := []string{}
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to enumerate tracked files")
	}

	sort.Strings(files)
	return files, nil
}

func walkedFiles(sourceDir, buildDir string) ([]string, error) {
	files := []string{}
	err := filepath.Walk(sourceDir, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if filePath == buildDir || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, filePath)
		if err != nil {
			return err
		}
		if strings.HasPrefix(rel, "..") {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to walk the source tree")
	}

	sort.Strings(files)
	return files, nil
}
