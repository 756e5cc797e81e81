package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testSceneYAML = `name: Test Pair
description: Two spheres for discovery tests
group: Test Scenes
materials:
  red: {type: lambertian, albedo: [0.9, 0.1, 0.1]}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: red}
  - {center: [0, -100.5, -1], radius: 100, material: red}
`

func writeScene(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"three-spheres", "Three Spheres"},
		{"hollow_glass", "Hollow Glass"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseYAMLMetadata(t *testing.T) {
	dir := t.TempDir()

	t.Run("with header", func(t *testing.T) {
		path := writeScene(t, dir, "pair.yaml", testSceneYAML)
		info, err := ParseYAMLMetadata(path)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := SceneInfo{
			ID:          "yaml:pair",
			Name:        "Test Pair",
			DisplayName: "Test Pair",
			Description: "Two spheres for discovery tests",
			Group:       "Test Scenes",
			Type:        "yaml",
			FilePath:    path,
		}
		if info != expected {
			t.Errorf("Got %+v, want %+v", info, expected)
		}
	})

	t.Run("without header", func(t *testing.T) {
		path := writeScene(t, dir, "bare-scene.yml", "spheres: []\n")
		info, err := ParseYAMLMetadata(path)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if info.Name != "Bare Scene" || info.Group != "YAML Scenes" || info.ID != "yaml:bare-scene" {
			t.Errorf("Unexpected fallback metadata: %+v", info)
		}
	})
}

func TestListYAMLScenes(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		scenes, err := ListYAMLScenes(filepath.Join(t.TempDir(), "nope"), nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(scenes) != 0 {
			t.Errorf("Expected no scenes, got %d", len(scenes))
		}
	})

	t.Run("sorted by display name", func(t *testing.T) {
		dir := t.TempDir()
		writeScene(t, dir, "zeta.yaml", "name: Zeta\n")
		writeScene(t, dir, "alpha.yml", "name: Alpha\n")
		writeScene(t, dir, "notes.txt", "ignored")

		scenes, err := ListYAMLScenes(dir, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(scenes) != 2 {
			t.Fatalf("Expected 2 scenes, got %d", len(scenes))
		}
		if scenes[0].Name != "Alpha" || scenes[1].Name != "Zeta" {
			t.Errorf("Unexpected order: %s, %s", scenes[0].Name, scenes[1].Name)
		}
	})
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "pair.yaml", testSceneYAML)

	response, err := ListAllScenes(dir, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}
	if response.Groups[0].Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", response.Groups[0].Name)
	}
	if len(response.Groups[0].Scenes) != len(ListBuiltinScenes()) {
		t.Errorf("Expected %d built-in scenes, got %d", len(ListBuiltinScenes()), len(response.Groups[0].Scenes))
	}
	if response.Groups[1].Name != "Test Scenes" {
		t.Errorf("Expected 'Test Scenes' group, got %q", response.Groups[1].Name)
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "pair.yaml", testSceneYAML)

	for _, info := range ListBuiltinScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Create(info.ID, dir)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Name != info.ID {
				t.Errorf("Expected scene name %q, got %q", info.ID, s.Name)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Error("Expected scene to contain spheres")
			}
		})
	}

	for _, id := range []string{"yaml:pair", "pair", "pair.yaml"} {
		t.Run(id, func(t *testing.T) {
			s, err := Create(id, dir)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Name != "Test Pair" || s.GetPrimitiveCount() != 2 {
				t.Errorf("Unexpected scene %q with %d spheres", s.Name, s.GetPrimitiveCount())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := Create("does-not-exist", dir)
		if !errors.Is(err, ErrUnknownScene) {
			t.Errorf("Expected ErrUnknownScene, got %v", err)
		}
	})
}

func TestCreateInDir(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "pair.yaml", testSceneYAML)

	outside := t.TempDir()
	writeScene(t, outside, "private.yaml", testSceneYAML)
	outsidePath := filepath.Join(outside, "private.yaml")
	relPath, err := filepath.Rel(dir, outsidePath)
	if err != nil {
		t.Fatalf("Failed to build relative path: %v", err)
	}

	for _, id := range []string{"default", "yaml:pair", "pair", "pair.yaml"} {
		t.Run(id, func(t *testing.T) {
			if _, err := CreateInDir(id, dir); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}

	refused := []string{
		outsidePath,
		"yaml:" + outsidePath,
		relPath,
		"yaml:" + relPath,
		"../pair.yaml",
		"..",
		"yaml:",
	}
	for _, id := range refused {
		t.Run("refuses "+id, func(t *testing.T) {
			s, err := CreateInDir(id, dir)
			if !errors.Is(err, ErrUnknownScene) {
				t.Errorf("Expected ErrUnknownScene, got %v", err)
			}
			if s != nil {
				t.Error("Expected nil scene")
			}
		})
	}

	// File paths stay available to Create
	if _, err := Create(outsidePath, dir); err != nil {
		t.Errorf("Create should accept a file path, got %v", err)
	}
}
