// Command archguard checks that modules/* keep their layer dependencies
// pointing inwards: presentation and infrastructure may import services and
// domain, services may import domain, domain imports neither.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"gopkg.in/yaml.v3"
)

type config struct {
	Root              string   `yaml:"root"`
	IgnoreTests       bool     `yaml:"ignore_tests"`
	IgnorePackages    []string `yaml:"ignore_packages"`
	SharedModules     []string `yaml:"shared_modules"`
	AllowedViolations []string `yaml:"allow_violations"`
	Layers            struct {
		Domain         []string `yaml:"domain"`
		Application    []string `yaml:"application"`
		Interfaces     []string `yaml:"interfaces"`
		Infrastructure []string `yaml:"infrastructure"`
	} `yaml:"layers"`
}

var (
	defaultDomainDirs         = []string{"domain"}
	defaultApplicationDirs    = []string{"services"}
	defaultInterfacesDirs     = []string{"presentation"}
	defaultInfrastructureDirs = []string{"infrastructure"}
)

func main() {
	var (
		configPath = flag.String("config", ".gocleanarch.yml", "config file; defaults apply when it does not exist")
		debug      = flag.Bool("debug", false, "print go-cleanarch debug output")
	)
	flag.Parse()

	if *debug {
		cleanarch.Log.SetOutput(os.Stderr)
	}
	violations, err := run(*configPath)
	if err != nil {
		log.Fatalf("archguard: %v", err)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			log.Println(v)
		}
		log.Printf("archguard: %d layer violations", len(violations))
		os.Exit(1)
	}
	log.Println("archguard: ok")
}

func run(configPath string) ([]string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}

	validator := cleanarch.NewValidator(cfg.layers())
	_, errs, err := validator.Validate(root, cfg.IgnoreTests, cfg.IgnorePackages)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", root, err)
	}
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Error())
	}
	return filterViolations(messages, cfg), nil
}

func loadConfig(path string) (*config, error) {
	cfg := &config{Root: "modules"}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.Root) == "" {
		cfg.Root = "modules"
	}
	return cfg, nil
}

func (c *config) layers() map[string]cleanarch.Layer {
	out := map[string]cleanarch.Layer{}
	add := func(custom, defaults []string, layer cleanarch.Layer) {
		dirs := defaults
		if len(custom) > 0 {
			dirs = custom
		}
		for _, d := range dirs {
			if d = strings.TrimSpace(d); d != "" {
				out[d] = layer
			}
		}
	}
	add(c.Layers.Domain, defaultDomainDirs, cleanarch.LayerDomain)
	add(c.Layers.Application, defaultApplicationDirs, cleanarch.LayerApplication)
	add(c.Layers.Interfaces, defaultInterfacesDirs, cleanarch.LayerInterfaces)
	add(c.Layers.Infrastructure, defaultInfrastructureDirs, cleanarch.LayerInfrastructure)
	return out
}

var crossModulePattern = regexp.MustCompile(`between ([\w-]+) and ([\w-]+) modules`)

// filterViolations drops cross-module findings that involve a shared module
// and findings matching an allow pattern.
func filterViolations(messages []string, cfg *config) []string {
	shared := make(map[string]struct{}, len(cfg.SharedModules))
	for _, m := range cfg.SharedModules {
		if m = strings.TrimSpace(m); m != "" {
			shared[m] = struct{}{}
		}
	}

	var out []string
	for _, msg := range messages {
		if m := crossModulePattern.FindStringSubmatch(msg); len(m) == 3 {
			_, a := shared[m[1]]
			_, b := shared[m[2]]
			if a || b {
				continue
			}
		}
		if allowed(msg, cfg.AllowedViolations) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func allowed(msg string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
