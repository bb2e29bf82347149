package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/kiosk-analytics/internal/adapters/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLocal(t *testing.T) {
	Convey("Given a local tree", t, func() {
		root := t.TempDir()
		So(os.MkdirAll(filepath.Join(root, "kiosk_0202"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(root, "kiosk_0202", "a.csv"), []byte("hello"), 0o644), ShouldBeNil)
		src := storage.NewLocal(root)
		ctx := context.Background()

		Convey("Then the location should be the absolute root", func() {
			So(filepath.IsAbs(src.Location()), ShouldBeTrue)
		})

		Convey("When listing the root", func() {
			entries, err := src.List(ctx, "")

			Convey("Then the kiosk directory should appear", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Name, ShouldEqual, "kiosk_0202")
				So(entries[0].Dir, ShouldBeTrue)
			})
		})

		Convey("When listing a kiosk directory", func() {
			entries, err := src.List(ctx, "kiosk_0202")

			Convey("Then files should carry their size", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Size, ShouldEqual, 5)
				So(entries[0].ModTime.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When opening a file", func() {
			rc, err := src.Open(ctx, "kiosk_0202/a.csv")
			So(err, ShouldBeNil)
			defer rc.Close()
			b, err := io.ReadAll(rc)

			Convey("Then its content should be returned", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "hello")
			})
		})

		Convey("Then missing paths should report ErrNotExist", func() {
			_, err := src.List(ctx, "kiosk_9999")
			So(errors.Is(err, storage.ErrNotExist), ShouldBeTrue)
			_, err = src.Open(ctx, "kiosk_0202/b.csv")
			So(errors.Is(err, storage.ErrNotExist), ShouldBeTrue)
		})

		Convey("Then paths escaping the root should be rejected", func() {
			for _, p := range []string{"../etc", "/etc/passwd", "kiosk_0202/../../x"} {
				_, err := src.List(ctx, p)
				So(errors.Is(err, storage.ErrInvalidPath), ShouldBeTrue)
			}
			_, err := src.Open(ctx, "")
			So(errors.Is(err, storage.ErrInvalidPath), ShouldBeTrue)
		})
	})

	Convey("Given a root that does not exist", t, func() {
		src := storage.NewLocal(filepath.Join(t.TempDir(), "missing"))

		Convey("Then listing it should report ErrNotExist", func() {
			_, err := src.List(context.Background(), "")
			So(errors.Is(err, storage.ErrNotExist), ShouldBeTrue)
		})
	})
}
