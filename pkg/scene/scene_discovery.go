package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
)

// DefaultScenesDir is where YAML scene files are looked up when no directory is given
const DefaultScenesDir = "scenes"

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "yaml"
	FilePath    string `json:"filePath"`    // Path to YAML file (yaml type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ListBuiltinScenes returns the scenes compiled into the binary
func ListBuiltinScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          "default",
			Name:        "Default Scene",
			DisplayName: "Default Scene",
			Description: "Diffuse, hollow glass and gold spheres on a ground sphere",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "random-spheres",
			Name:        "Random Spheres",
			DisplayName: "Random Spheres",
			Description: "Field of small random spheres around three large ones",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "single-sphere",
			Name:        "Single Sphere",
			DisplayName: "Single Sphere",
			Description: "One gray sphere in front of a pinhole camera",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "sphere-grid",
			Name:        "Sphere Grid",
			DisplayName: "Sphere Grid",
			Description: "20x20 grid of rainbow-colored metallic spheres",
			Group:       builtinGroup,
			Type:        "builtin",
		},
	}
}

// ListYAMLScenes scans dir for *.yaml and *.yml scene files.
// A missing directory yields an empty list.
func ListYAMLScenes(dir string, logger core.Logger) ([]SceneInfo, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseYAMLMetadata(filePath)
		if err != nil {
			logger.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseYAMLMetadata reads the descriptive header of a YAML scene file
func ParseYAMLMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	sceneInfo := SceneInfo{
		ID:          "yaml:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "YAML Scenes",
		Type:        "yaml",
		FilePath:    filePath,
	}

	header, err := loaders.ReadSceneHeader(filePath)
	if err != nil {
		return sceneInfo, err
	}

	if header.Name != "" {
		sceneInfo.Name = header.Name
		sceneInfo.DisplayName = header.Name
	}
	if header.Group != "" {
		sceneInfo.Group = header.Group
	}
	sceneInfo.Description = header.Description

	return sceneInfo, nil
}

// ListAllScenes returns built-in and YAML scenes, grouped by category
func ListAllScenes(dir string, logger core.Logger) (ScenesResponse, error) {
	var response ScenesResponse

	yamlScenes, err := ListYAMLScenes(dir, logger)
	if err != nil {
		return response, fmt.Errorf("failed to list YAML scenes: %w", err)
	}

	allScenes := append(ListBuiltinScenes(), yamlScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if group, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: group})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// Create builds a scene by ID. Built-in IDs are matched first; "yaml:<name>"
// and bare file names are resolved against dir, and a name with an
// extension may also be a path to any scene file.
func Create(id string, dir string) (*Scene, error) {
	return create(id, dir, true)
}

// CreateInDir is Create restricted to built-in IDs and scene files directly
// inside dir. Names carrying a path are reported as unknown without touching
// the filesystem.
func CreateInDir(id string, dir string) (*Scene, error) {
	return create(id, dir, false)
}

func create(id string, dir string, allowPaths bool) (*Scene, error) {
	switch id {
	case "default":
		return NewDefaultScene(), nil
	case "random-spheres", "random":
		return NewRandomSpheresScene(RandomSpheresSeed), nil
	case "single-sphere", "single":
		return NewSingleSphereScene(), nil
	case "sphere-grid":
		return NewSphereGridScene(), nil
	}

	name := strings.TrimPrefix(id, "yaml:")
	if !allowPaths && !isPlainName(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}

	var candidates []string
	if filepath.Ext(name) == "" {
		candidates = []string{
			filepath.Join(dir, name+".yaml"),
			filepath.Join(dir, name+".yml"),
		}
	} else if isSceneFile(name) {
		candidates = []string{filepath.Join(dir, name)}
		if allowPaths {
			candidates = append([]string{name}, candidates...)
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return NewYAMLScene(path)
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// isPlainName reports whether name is a single path element
func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name && !filepath.IsAbs(name)
}

// isSceneFile reports whether name has a YAML extension
func isSceneFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
