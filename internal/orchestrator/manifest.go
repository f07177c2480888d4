package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/qrailibs/lmlang/internal/config"
)

// writeManifest writes the runtime-appropriate dependency manifest
// (package.json for nodejs, requirements.txt for python, nothing for
// bash) into workDir, validating any version string that looks like a
// semver range before it reaches the package manager.
func writeManifest(workDir string, cc config.ContainerConfig) error {
	if cc.Dependencies == nil {
		return nil
	}
	switch cc.Runtime {
	case "nodejs":
		return writeNodeManifest(workDir, cc.Dependencies)
	case "python":
		return writePythonManifest(workDir, cc.Dependencies)
	case "bash":
		return nil // bash has no package manifest concept
	default:
		return fmt.Errorf("unknown runtime %q", cc.Runtime)
	}
}

func writeNodeManifest(workDir string, deps any) error {
	depMap, ok := deps.(map[string]any)
	if !ok {
		return fmt.Errorf("nodejs dependencies must be a name->version map")
	}
	for name, v := range depMap {
		version, _ := v.(string)
		if version != "" && !validSemverRange(version) {
			return fmt.Errorf("dependency %q: invalid version range %q", name, version)
		}
	}
	manifest := map[string]any{
		"name":         "lml-container",
		"private":      true,
		"dependencies": depMap,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workDir, "package.json"), data, 0o644)
}

func writePythonManifest(workDir string, deps any) error {
	var lines []string
	switch d := deps.(type) {
	case map[string]any:
		for name, v := range d {
			version, _ := v.(string)
			if version != "" && !validSemverRange(version) {
				return fmt.Errorf("dependency %q: invalid version range %q", name, version)
			}
			if version == "" {
				lines = append(lines, name)
			} else {
				lines = append(lines, name+version)
			}
		}
	case []any:
		for _, v := range d {
			s, _ := v.(string)
			lines = append(lines, s)
		}
	default:
		return fmt.Errorf("python dependencies must be a name->version map or a list")
	}
	content := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte(content), 0o644)
}

// validSemverRange accepts a bare version, a caret/tilde-prefixed range,
// or pip-style comparator prefixes, validating the numeric portion with
// golang.org/x/mod/semver (which requires a leading "v").
func validSemverRange(v string) bool {
	trimmed := strings.TrimLeft(v, "^~=<>! ")
	if trimmed == "" || trimmed == "*" || trimmed == "latest" {
		return true
	}
	if !strings.HasPrefix(trimmed, "v") {
		trimmed = "v" + trimmed
	}
	return semver.IsValid(trimmed)
}

// installDependencies invokes the configured package manager inside
// workDir, if one is set and the runtime has a manifest to install from.
func installDependencies(ctx context.Context, workDir string, cc config.ContainerConfig) error {
	if cc.PackageManager == "" || cc.Dependencies == nil {
		return nil
	}
	var cmd *exec.Cmd
	switch cc.PackageManager {
	case "npm":
		cmd = exec.CommandContext(ctx, "npm", "install", "--no-audit", "--no-fund")
	case "yarn":
		cmd = exec.CommandContext(ctx, "yarn", "install")
	case "pip":
		cmd = exec.CommandContext(ctx, "pip", "install", "-r", "requirements.txt")
	case "pip3":
		cmd = exec.CommandContext(ctx, "pip3", "install", "-r", "requirements.txt")
	default:
		return fmt.Errorf("unknown package manager %q", cc.PackageManager)
	}
	cmd.Dir = workDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", cc.PackageManager, err, out)
	}
	return nil
}
