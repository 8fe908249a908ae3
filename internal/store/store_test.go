package store

import (
	"path/filepath"
	"testing"

	"fileshredder_enterprise/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eraser.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndReadAll(t *testing.T) {
	s := openTestStore(t)

	flags := model.FileFlags(0).WithSystemAdded(true).WithIsFile(true)
	if err := s.Insert("key1", `C:\A.TXT`, flags); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	records, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ReadAll() returned %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Key != "key1" || rec.Path != `C:\A.TXT` || rec.Entropy != model.UnknownEntropy || rec.Flags != flags {
		t.Fatalf("ReadAll() record = %+v, want key=key1 path=C:\\A.TXT entropy=%v flags=%v", rec, model.UnknownEntropy, flags)
	}
}

func TestUpdateEntropy(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert("key1", `C:\A.TXT`, 0); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.UpdateEntropy("key1", 4.5); err != nil {
		t.Fatalf("UpdateEntropy() error = %v", err)
	}

	records, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 1 || records[0].Entropy != 4.5 {
		t.Fatalf("ReadAll() after UpdateEntropy = %+v, want entropy 4.5", records)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert("key1", `C:\A.TXT`, 0); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.Delete("key1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	records, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("ReadAll() after Delete = %d records, want 0", len(records))
	}
}

func TestDropTableEmptiesAndRecreatesSchema(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert("key1", `C:\A.TXT`, 0); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.DropTable(); err != nil {
		t.Fatalf("DropTable() error = %v", err)
	}

	records, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() after DropTable error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("ReadAll() after DropTable = %d records, want 0", len(records))
	}

	// Schema must still exist: a further Insert must succeed.
	if err := s.Insert("key2", `C:\B.TXT`, 0); err != nil {
		t.Fatalf("Insert() after DropTable error = %v", err)
	}
}

func TestDeleteUserRowsKeepsSystemAddedRows(t *testing.T) {
	s := openTestStore(t)
	userFlags := model.FileFlags(0).WithSystemAdded(false).WithIsFile(true)
	sysFlags := model.FileFlags(0).WithSystemAdded(true).WithIsFile(true)

	if err := s.Insert("user", `C:\USER.TXT`, userFlags); err != nil {
		t.Fatalf("Insert(user) error = %v", err)
	}
	if err := s.Insert("sys", `C:\SYS.TXT`, sysFlags); err != nil {
		t.Fatalf("Insert(sys) error = %v", err)
	}

	if err := s.DeleteUserRows(); err != nil {
		t.Fatalf("DeleteUserRows() error = %v", err)
	}

	records, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 1 || records[0].Key != "sys" {
		t.Fatalf("ReadAll() after DeleteUserRows = %+v, want only the system row", records)
	}
}
