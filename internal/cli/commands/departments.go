package commands

import (
	"context"
	"fmt"
	"strings"

	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
)

type departmentsCmd struct{}

func (departmentsCmd) Name() string        { return "departments" }
func (departmentsCmd) Description() string { return "Список подразделений" }
func (departmentsCmd) Usage() string       { return "departments" }

func (departmentsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	st := root.Departments.Store()
	if err := root.Departments.FetchList(ctx, nil); err != nil {
		return report(err, st.Err(), "Failed to fetch departments")
	}
	items := st.Items()
	if len(items) == 0 {
		fmt.Fprintln(Out, "Нет подразделений")
		return nil
	}
	for _, d := range items {
		titles := make([]string, 0, len(d.Collections))
		for _, c := range d.Collections {
			titles = append(titles, c.Title)
		}
		fmt.Fprintf(Out, "- %s  %s  collections=%d", d.ID, d.Name, len(d.Collections))
		if len(titles) > 0 {
			fmt.Fprintf(Out, " [%s]", strings.Join(titles, ", "))
		}
		fmt.Fprintln(Out)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(items))
	return nil
}

type departmentAddCmd struct{}

func (departmentAddCmd) Name() string        { return "department-add" }
func (departmentAddCmd) Description() string { return "Создать подразделение" }
func (departmentAddCmd) Usage() string {
	return "department-add [--description <text>] <name>"
}

func (departmentAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("department-add")
	var desc optString
	fs.Var(&desc, "description", "описание")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := requireSession(root); err != nil {
		return err
	}

	in := model.DepartmentInput{Name: strings.Join(fs.Args(), " "), Description: desc.ptr()}
	d, err := root.Departments.Create(ctx, in)
	if err != nil {
		return report(err, root.Departments.Store().Err(), "Failed to create department")
	}
	fmt.Fprintf(Out, "Created department %s (%s)\n", d.Name, d.ID)
	return nil
}

type departmentEditCmd struct{}

func (departmentEditCmd) Name() string        { return "department-edit" }
func (departmentEditCmd) Description() string { return "Изменить подразделение" }
func (departmentEditCmd) Usage() string {
	return "department-edit [--name <name>] [--description <text>] <id>"
}

func (departmentEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("department-edit")
	var name, desc optString
	fs.Var(&name, "name", "новое название")
	fs.Var(&desc, "description", "новое описание")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := requireSession(root); err != nil {
		return err
	}

	d, err := root.Departments.Update(ctx, fs.Arg(0), model.DepartmentInput{Name: name.value, Description: desc.ptr()})
	if err != nil {
		return report(err, root.Departments.Store().Err(), "Failed to update department")
	}
	fmt.Fprintf(Out, "Updated department %s (%s)\n", d.Name, d.ID)
	return nil
}

type departmentRmCmd struct{}

func (departmentRmCmd) Name() string        { return "department-rm" }
func (departmentRmCmd) Description() string { return "Удалить подразделение" }
func (departmentRmCmd) Usage() string       { return "department-rm <id>" }

func (departmentRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := requireSession(root); err != nil {
		return err
	}
	if err := root.Departments.Delete(ctx, args[0]); err != nil {
		return report(err, root.Departments.Store().Err(), "Failed to delete department")
	}
	fmt.Fprintf(Out, "Deleted department %s\n", args[0])
	return nil
}

func init() {
	RegisterCmd(departmentsCmd{})
	RegisterCmd(departmentAddCmd{})
	RegisterCmd(departmentEditCmd{})
	RegisterCmd(departmentRmCmd{})
}
