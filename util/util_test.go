package util

import (
	"regexp"
	"testing"

	"github.com/aether-player/aether/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "track", "tracks"), ShouldEqual, "1 track")
		So(Quantify(2, "track", "tracks"), ShouldEqual, "2 tracks")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("natural"), ShouldEqual, "Natural")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<index>\d+)\s+\[(?P<id>[^\]]+)\]`)
		groups := ReGroups(re, " 1 [USB            ]")
		So(groups["index"], ShouldEqual, "1")
		So(groups["id"], ShouldEqual, "USB            ")
		So(ReGroups(re, "nothing"), ShouldBeEmpty)
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("music/Album/album.cue"), ShouldEqual, "album")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 3), ShouldEqual, 3)
		So(Clamp(-1.5, 0, 1), ShouldEqual, 0)
		So(Clamp(0.4, 0, 1), ShouldEqual, 0.4)
	})
}

func TestFormatFloat(t *testing.T) {
	Convey("FormatFloat", t, func() {
		So(FormatFloat(1), ShouldEqual, "1.0")
		So(FormatFloat(1.15), ShouldEqual, "1.15")
		So(FormatFloat(0.5), ShouldEqual, "0.5")
		So(FormatFloat(2.5), ShouldEqual, "2.5")
	})
}

func TestRound1(t *testing.T) {
	Convey("Round1", t, func() {
		So(Round1(12.345), ShouldEqual, 12.3)
		So(Round1(12.36), ShouldAlmostEqual, 12.4, 1e-9)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/a/b", 0o755))
		lo.Must0(fs.WriteFile("/a/b/c.txt", []byte("x"), 0o644))

		So(Delete("/a/b/c.txt"), ShouldBeNil)
		So(lo.Must(fs.Exists("/a/b/c.txt")), ShouldBeFalse)
		So(Delete("/a"), ShouldBeNil)
		So(lo.Must(fs.Exists("/a")), ShouldBeFalse)
		So(Delete("/missing"), ShouldNotBeNil)
	})
}
