package commands

import (
	"context"
	"fmt"
	"strings"

	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
)

type collectionsCmd struct{}

func (collectionsCmd) Name() string        { return "collections" }
func (collectionsCmd) Description() string { return "Список коллекций" }
func (collectionsCmd) Usage() string       { return "collections [--department <id>]" }

func (collectionsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("collections")
	dep := fs.String("department", "", "только коллекции подразделения")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	st := root.Collections.Store()
	if err := root.Collections.FetchList(ctx, nil); err != nil {
		return report(err, st.Err(), "Failed to fetch collections")
	}
	shown := 0
	for _, c := range st.Items() {
		names := make([]string, 0, len(c.Departments))
		match := *dep == ""
		for _, d := range c.Departments {
			names = append(names, d.Name)
			if d.ID == *dep {
				match = true
			}
		}
		if !match {
			continue
		}
		shown++
		fmt.Fprintf(Out, "- %s  %s  records=%d  departments=[%s]\n", c.ID, c.Title, len(c.Records), strings.Join(names, ", "))
	}
	if shown == 0 {
		fmt.Fprintln(Out, "Нет коллекций")
		return nil
	}
	fmt.Fprintf(Out, "Всего: %d\n", shown)
	return nil
}

type collectionAddCmd struct{}

func (collectionAddCmd) Name() string        { return "collection-add" }
func (collectionAddCmd) Description() string { return "Создать коллекцию" }
func (collectionAddCmd) Usage() string {
	return "collection-add --department <id>[,<id>] [--description <text>] <title>"
}

func (collectionAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("collection-add")
	var deps listFlag
	var desc optString
	fs.Var(&deps, "department", "id подразделения (можно повторять)")
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

	in := model.CollectionInput{Title: strings.Join(fs.Args(), " "), Description: desc.ptr(), DepartmentIDs: deps}
	c, err := root.Collections.Create(ctx, in)
	if err != nil {
		return report(err, root.Collections.Store().Err(), "Failed to create collection")
	}
	fmt.Fprintf(Out, "Created collection %s (%s)\n", c.Title, c.ID)
	return nil
}

type collectionEditCmd struct{}

func (collectionEditCmd) Name() string        { return "collection-edit" }
func (collectionEditCmd) Description() string { return "Изменить коллекцию" }
func (collectionEditCmd) Usage() string {
	return "collection-edit [--title <t>] [--description <text>] [--department <id>...] <id>"
}

func (collectionEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("collection-edit")
	var title, desc optString
	var deps listFlag
	fs.Var(&title, "title", "новое название")
	fs.Var(&desc, "description", "новое описание")
	fs.Var(&deps, "department", "id подразделения (заменяет список)")
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

	in := model.CollectionInput{Title: title.value, Description: desc.ptr(), DepartmentIDs: deps}
	c, err := root.Collections.Update(ctx, fs.Arg(0), in)
	if err != nil {
		return report(err, root.Collections.Store().Err(), "Failed to update collection")
	}
	fmt.Fprintf(Out, "Updated collection %s (%s)\n", c.Title, c.ID)
	return nil
}

type collectionRmCmd struct{}

func (collectionRmCmd) Name() string        { return "collection-rm" }
func (collectionRmCmd) Description() string { return "Удалить коллекцию" }
func (collectionRmCmd) Usage() string       { return "collection-rm <id>" }

func (collectionRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	if err := root.Collections.Delete(ctx, args[0]); err != nil {
		return report(err, root.Collections.Store().Err(), "Failed to delete collection")
	}
	fmt.Fprintf(Out, "Deleted collection %s\n", args[0])
	return nil
}

func init() {
	RegisterCmd(collectionsCmd{})
	RegisterCmd(collectionAddCmd{})
	RegisterCmd(collectionEditCmd{})
	RegisterCmd(collectionRmCmd{})
}
