// Package project loads the PROJECT.yaml file describing a project.
package project

import (
	"io/ioutil"
	"path"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v2"

	"github.com/stoneforge/bgen/buildfile"
	"github.com/stoneforge/bgen/util"
)

// Project describes a project: its name and version, which backend build
// files to generate and where the build description lives.
type Project struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Backend   string `yaml:"backend,omitempty"`
	BuildFile string `yaml:"buildFile,omitempty"`
}

// Load reads the project description from the PROJECT.yaml file in `root`.
func Load(root string) (Project, error) {
	filePath := path.Join(root, util.ProjectFileName)
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return Project{}, eris.Wrapf(err, "no project description in %s", root)
	}

	project := Project{
		BuildFile: buildfile.DefaultFileName,
	}
	if err := yaml.UnmarshalStrict(data, &project); err != nil {
		return Project{}, eris.Wrapf(err, "malformed project description %s", filePath)
	}

	if project.Name == "" {
		return Project{}, eris.Errorf("project description %s declares no name", filePath)
	}
	if project.Version != "" {
		if _, err := util.NewVersion(project.Version); err != nil {
			return Project{}, eris.Wrapf(err, "project description %s declares an invalid version %q", filePath, project.Version)
		}
	}
	if project.BuildFile == "" {
		project.BuildFile = buildfile.DefaultFileName
	}

	return project, nil
}

// ArchiveName returns the name of the source distribution archive,
// without extension.
func (p Project) ArchiveName() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "-" + p.Version
}
