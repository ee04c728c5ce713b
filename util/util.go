package util

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
)

// FileMode is the default FileMode used when creating files.
const FileMode = 0664

// DirMode is the default FileMode used when creating directories.
const DirMode = 0775

// ProjectFileName is the name of the file describing a project.
const ProjectFileName = "PROJECT.yaml"

// FileExists checks whether some file exists.
func FileExists(file string) bool {
	stat, err := os.Stat(file)
	return err == nil && !stat.IsDir()
}

// DirExists checks whether some directory exists.
func DirExists(dir string) bool {
	stat, err := os.Stat(dir)
	return err == nil && stat.IsDir()
}

func getProjectRoot(p string) (string, error) {
	for {
		projectFilePath := path.Join(p, ProjectFileName)
		if FileExists(projectFilePath) {
			return p, nil
		}
		if p == "/" {
			return "", fmt.Errorf("not inside a project")
		}
		p = path.Dir(p)
	}
}

// GetProjectRoot returns the root directory of the current project
// (i.e., the closest parent directory containing a PROJECT.yaml file).
func GetProjectRoot() (string, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return getProjectRoot(workingDir)
}

// WriteFile writes data to a file, creating parent directories as needed.
func WriteFile(filePath string, data []byte) error {
	if err := os.MkdirAll(path.Dir(filePath), DirMode); err != nil {
		return err
	}
	return ioutil.WriteFile(filePath, data, FileMode)
}
