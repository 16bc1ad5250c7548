package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli"

	"hrmsync/internal/domain/attachments"
	"hrmsync/internal/domain/records"
)

func runImport(c *cli.Context) error {
	m := getMetadata(c)
	file := c.Args().First()
	if file == "" {
		return errors.New("import: FILE is required")
	}
	r, closeFn, err := openInput(file, m.r)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := m.store.ImportBrowserExport(m.ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.w, "imported %d keys, %d employees available\n", n, len(m.store.GetAll(m.ctx)))
	return nil
}

func runSave(c *cli.Context) error {
	m := getMetadata(c)
	file := c.Args().First()
	if file == "" {
		return errors.New("save: FILE is required")
	}
	r, closeFn, err := openInput(file, m.r)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var emp records.Employee
	if err := json.Unmarshal(data, &emp); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	saved, compressed, err := m.store.Save(m.ctx, emp)
	if err != nil {
		return err
	}
	if !compressed {
		fmt.Fprintln(m.e, "warning: data stored uncompressed")
	}
	fmt.Fprintf(m.w, "saved employee %s\n", saved.ID)
	return nil
}

func runList(c *cli.Context) error {
	m := getMetadata(c)
	employees := m.store.GetAll(m.ctx)
	if len(employees) == 0 {
		fmt.Fprintln(m.w, "no local employees")
		return nil
	}

	tw := tabwriter.NewWriter(m.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT\tENTRIES\tFILES")
	for i := range employees {
		emp := &employees[i]
		entries := 0
		for _, name := range records.MigratedCollections {
			entries += emp.CollectionLen(name)
		}
		files := 0
		for _, slot := range emp.FileSlots() {
			if !slot.Field.IsEmpty() {
				files++
			}
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%d\t%d\n", emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Department, entries, files)
	}
	return tw.Flush()
}

func runShow(c *cli.Context) error {
	m := getMetadata(c)
	id := c.Args().First()
	if id == "" {
		return errors.New("show: ID is required")
	}
	emp, err := m.store.Get(m.ctx, records.LocalID(id))
	if err != nil {
		return err
	}
	return printJSON(m.w, emp)
}

func runDelete(c *cli.Context) error {
	m := getMetadata(c)
	id := c.Args().First()
	if id == "" {
		return errors.New("delete: ID is required")
	}
	if err := m.store.Delete(m.ctx, records.LocalID(id)); err != nil {
		return err
	}
	fmt.Fprintf(m.w, "deleted employee %s\n", id)
	return nil
}

func runDeleteEntry(c *cli.Context) error {
	m := getMetadata(c)
	employee := c.String("employee")
	collection := c.String("collection")
	entry := c.String("entry")
	if employee == "" || collection == "" || entry == "" {
		return errors.New("delete-entry: --employee, --collection and --entry are required")
	}
	if err := m.store.DeleteEntry(m.ctx, records.LocalID(employee), collection, records.LocalID(entry)); err != nil {
		return err
	}
	fmt.Fprintf(m.w, "deleted %s entry %s of employee %s\n", collection, entry, employee)
	return nil
}

func runAttach(c *cli.Context) error {
	m := getMetadata(c)
	employee := c.String("employee")
	file := c.Args().First()
	if employee == "" || file == "" {
		return errors.New("attach: --employee and FILE are required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	contentType := c.String("type")
	if contentType == "" {
		contentType = detectType(file, data)
	}

	field, err := m.store.AttachFile(m.ctx, records.LocalID(employee), c.String("slot"), &attachments.File{
		Name: filepath.Base(file),
		Type: contentType,
		Data: data,
	})
	if err != nil {
		return err
	}
	if dataURL, ok := field.DataURL(); ok {
		fmt.Fprintf(m.w, "stored %s inline (%d bytes)\n", filepath.Base(file), len(dataURL))
	} else if ref, ok := field.Ref(); ok {
		note := ""
		if ref.TooLarge {
			note = ", too large to keep locally"
		}
		fmt.Fprintf(m.w, "stored a reference to %s%s\n", ref.Name, note)
	}
	return nil
}

func runUsage(c *cli.Context) error {
	m := getMetadata(c)
	usage, err := m.store.Usage(m.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.w, "used %.2f MB of %.2f MB (%.2f%%), %.2f MB available\n", usage.UsedMB, usage.TotalMB, usage.PercentUsed, usage.AvailableMB)
	if updated, ok := m.store.LastUpdated(m.ctx); ok {
		fmt.Fprintf(m.w, "last updated %s\n", updated.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runClear(c *cli.Context) error {
	m := getMetadata(c)
	if err := m.store.ClearExceptPreserved(m.ctx); err != nil {
		return err
	}
	fmt.Fprintln(m.w, "local data cleared")
	return nil
}

func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func detectType(name string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType
		}
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}
