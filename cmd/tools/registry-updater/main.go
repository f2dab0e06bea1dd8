// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"activity-signup/pkg/registry"
)

const defaultPath = "configs/activities.json"

func main() {
	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to seed file")
		force := fs.Bool("force", false, "Overwrite an existing file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := initRegistry(*path, *force); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote built-in seed to %s\n", *path)

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to seed file")
		name := fs.String("name", "", "Activity name (e.g., Robotics Club)")
		description := fs.String("description", "", "Description")
		schedule := fs.String("schedule", "", "Schedule (e.g., Mondays, 3:30 PM - 5:00 PM)")
		maxParticipants := fs.Int("max", 0, "Maximum participants")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *name == "" || *description == "" || *schedule == "" || *maxParticipants <= 0 {
			fs.Usage()
			return fmt.Errorf("name, description, schedule, and a positive max are required for add")
		}
		err := addActivity(*path, registry.Activity{
			Name:            *name,
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    []string{},
		})
		if err != nil {
			return fmt.Errorf("adding activity: %w", err)
		}
		fmt.Fprintf(out, "Added activity: %s\n", *name)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to seed file")
		name := fs.String("name", "", "Activity name to update")
		field := fs.String("field", "", "Field to update (description, schedule, max)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *name == "" || *field == "" || *value == "" {
			fs.Usage()
			return fmt.Errorf("name, field, and value are required for update")
		}
		if err := updateActivity(*path, *name, *field, *value); err != nil {
			return fmt.Errorf("updating activity: %w", err)
		}
		fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *name, *field, *value)

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to seed file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to seed file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		listActivities(reg, out)

	default:
		help(out)
	}
	return nil
}

func initRegistry(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; use -force to overwrite", path)
	}
	reg := registry.Default()
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return reg.Save(path)
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Find(activity.Name); exists {
		return fmt.Errorf("activity %s already exists", activity.Name)
	}

	reg.Activities = append(reg.Activities, activity)
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return reg.Save(path)
}

func updateActivity(path, name, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	a, ok := reg.Find(name)
	if !ok {
		return fmt.Errorf("activity %s not found", name)
	}

	switch field {
	case "description":
		a.Description = value
	case "schedule":
		a.Schedule = value
	case "max":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max value: %q", value)
		}
		a.MaxParticipants = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return reg.Save(path)
}

func listActivities(reg *registry.ActivityRegistry, out io.Writer) {
	activities := make([]registry.Activity, len(reg.Activities))
	copy(activities, reg.Activities)
	sort.Slice(activities, func(i, j int) bool { return activities[i].Name < activities[j].Name })

	for _, a := range activities {
		fmt.Fprintf(out, "%-20s %2d/%-2d  %s\n", a.Name, len(a.Participants), a.MaxParticipants, a.Schedule)
	}
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in seed to a file
  add      Add a new activity to the seed
  update   Update an existing activity's field
  validate Validate the seed file
  list     List activities with their enrollment
  help     Show this help message

Examples:
  registry-updater init -path configs/activities.json
  registry-updater add -name "Robotics Club" -description "Build and program robots" -schedule "Mondays, 3:30 PM - 5:00 PM" -max 16
  registry-updater update -name "Chess Club" -field max -value 14
  registry-updater validate -path configs/activities.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
