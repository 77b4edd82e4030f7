package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/rules"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <sheet.json> [sheet.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &SheetValidator{}
	failed := false
	for _, filename := range os.Args[1:] {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filepath.Base(filename))
	}
	if failed {
		os.Exit(1)
	}
}

type SheetValidator struct {
	errors []string
}

func (v *SheetValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("sheet file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidSheetID(nameWithoutExt) {
		return fmt.Errorf("sheet filename '%s' must be lowercase snake_case (e.g., my_rogue.json, not MyRogue.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var spec actor.SheetSpec
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&spec); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	// The sheet loader keys on filename, so a mismatched id field
	// inside the file is silently overridden at load time.
	if spec.ID == "" {
		spec.ID = nameWithoutExt
	}

	v.validateSpec(&spec)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *SheetValidator) validateSpec(spec *actor.SheetSpec) {
	if spec.Name == "" {
		v.addError("sheet must have a name")
	}
	if spec.Level < 1 || spec.Level > 20 {
		v.addError(fmt.Sprintf("level %d out of range [1,20]", spec.Level))
	}
	if spec.MaxHP <= 0 {
		v.addError("max_hp must be positive")
	}
	if spec.HP < 0 || spec.HP > spec.MaxHP {
		v.addError(fmt.Sprintf("hp %d out of range [0,%d]", spec.HP, spec.MaxHP))
	}
	if spec.AC <= 0 {
		v.addError("ac must be positive")
	}

	v.validateStats(&spec.Stats)

	for _, skill := range spec.Proficiencies {
		if _, ok := rules.SkillAbility[strings.ToLower(strings.TrimSpace(skill))]; !ok {
			v.addError(fmt.Sprintf("unknown proficiency skill '%s'", skill))
		}
	}

	for i, item := range spec.Inventory {
		if strings.TrimSpace(item) == "" {
			v.addError(fmt.Sprintf("inventory entry %d is empty", i))
		}
	}

	// A sheet that passes field checks must also build cleanly.
	if len(v.errors) == 0 {
		if _, err := actor.NewCharacterSheet(spec); err != nil {
			v.addError(fmt.Sprintf("sheet failed to build: %v", err))
		}
	}
}

func (v *SheetValidator) validateStats(stats *actor.Stats5e) {
	check := func(name string, score int) {
		if score < 1 || score > 30 {
			v.addError(fmt.Sprintf("%s score %d out of range [1,30]", name, score))
		}
	}
	check("strength", stats.Strength)
	check("dexterity", stats.Dexterity)
	check("constitution", stats.Constitution)
	check("intelligence", stats.Intelligence)
	check("wisdom", stats.Wisdom)
	check("charisma", stats.Charisma)
}

func (v *SheetValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validSheetIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidSheetID(id string) bool {
	return validSheetIDRegex.MatchString(id)
}
