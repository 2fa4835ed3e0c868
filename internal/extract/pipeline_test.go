package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/xappli/internal/catalog"
	catalogmocks "github.com/vmunix/xappli/internal/catalog/mocks"
)

// rawFile builds a catalog row for a file object. Nil pointers become
// NULL columns.
func rawFile(title string, artist, album *string, container, codec, source string) catalog.RawRecord {
	raw := catalog.RawRecord{
		catalog.ColumnObjectType:    int64(2),
		catalog.ColumnName:          title,
		catalog.ColumnArtist:        nil,
		catalog.ColumnAlbum:         nil,
		catalog.ColumnContainerType: container,
		catalog.ColumnCodec:         codec,
		catalog.ColumnFilename:      source,
	}
	if artist != nil {
		raw[catalog.ColumnArtist] = *artist
	}
	if album != nil {
		raw[catalog.ColumnAlbum] = *album
	}
	return raw
}

func TestPipeline_CopyWithUnknownArtist(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	src := writeFile(t, t.TempDir(), "a.mp3", "mp3 data")

	source := catalog.StaticSource{rawFile("A", nil, ptr("Hits"), "MP3", "MPEG-1 Audio Layer3", src)}
	p := New(source, Config{Root: root, Mode: ModeFLAC, Policy: SkipExisting}, testLogger())

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, ActionCopy, res.Plan.Action)
	assert.Equal(t, OutcomeTransferred, res.Outcome)
	assert.Equal(t, filepath.Join(root, "Unknown Artist", "Hits", "a.mp3"), res.DestPath)
	assert.FileExists(t, res.DestPath)
	assert.Equal(t, 1, report.Dirs)
}

func TestPipeline_ConvertSanitizedArtist(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	src := writeFile(t, t.TempDir(), "b.3gp", "aac data")

	source := catalog.StaticSource{
		rawFile("B", ptr("Rémy: The *One*"), ptr("B"), "3GP", catalog.CodecAACLC, src),
	}
	p := New(source, Config{
		Root:      root,
		Mode:      ModeFLAC,
		Policy:    SkipExisting,
		Converter: copyingConverter(ctrl),
	}, testLogger())

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	dir := filepath.Join(root, "Rémy The One", "B")
	res := report.Results[0]
	assert.Equal(t, ActionConvert, res.Plan.Action)
	assert.Equal(t, dir, res.Plan.Dir)
	assert.Equal(t, OutcomeConverted, res.Outcome)

	got, err := os.ReadFile(filepath.Join(dir, "b.flac"))
	require.NoError(t, err)
	assert.Equal(t, "flac:aac data", string(got))
	assert.NoFileExists(t, filepath.Join(dir, "b.3gp"), "staged copy removed")
}

func TestPipeline_SharedDirectoryCreatedOnce(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()

	source := catalog.StaticSource{
		rawFile("One", ptr("Artist"), ptr("Album"), "MP3", "", writeFile(t, srcDir, "one.mp3", "1")),
		rawFile("Two", ptr("Artist"), ptr("Album"), "MP3", "", writeFile(t, srcDir, "two.mp3", "2")),
	}
	report, err := New(source, Config{Root: root}, testLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Dirs)
	assert.Equal(t, 2, report.Count(OutcomeTransferred))

	entries, err := os.ReadDir(filepath.Join(root, "Artist", "Album"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPipeline_IgnoresNonFileObjects(t *testing.T) {
	root := t.TempDir()
	src := writeFile(t, t.TempDir(), "a.mp3", "x")

	source := catalog.StaticSource{
		{catalog.ColumnObjectType: int64(1), catalog.ColumnName: "Playlist"},
		rawFile("A", ptr("Artist"), ptr("Album"), "MP3", "", src),
		{catalog.ColumnObjectType: int64(8), catalog.ColumnName: "Artist"},
	}
	report, err := New(source, Config{Root: root}, testLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Ignored)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Results[0].Index)
}

func TestPipeline_RecordFailuresDoNotStopRun(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()

	source := catalog.StaticSource{
		rawFile("Gone", ptr("Artist"), ptr("Album"), "MP3", "", filepath.Join(srcDir, "gone.mp3")),
		rawFile("NoSource", ptr("Artist"), ptr("Album"), "MP3", "", ""),
		rawFile("Here", ptr("Artist"), ptr("Album"), "MP3", "", writeFile(t, srcDir, "here.mp3", "x")),
	}
	source[1][catalog.ColumnFilename] = nil

	report, err := New(source, Config{Root: root}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, OutcomeMissingSource, report.Results[0].Outcome)
	assert.Equal(t, OutcomeMissingSource, report.Results[1].Outcome)
	assert.Equal(t, OutcomeTransferred, report.Results[2].Outcome)
	assert.Len(t, report.FollowUps(), 2)

	report.IgnoreMissing = true
	assert.Empty(t, report.FollowUps(), "ignored missing sources are not follow-ups")
}

func TestPipeline_PreservesOrderWithWorkers(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()

	var source catalog.StaticSource
	for i := range 20 {
		name := fmt.Sprintf("track%02d.mp3", i)
		album := fmt.Sprintf("Album %d", i%3)
		source = append(source, rawFile(name, ptr("Artist"), &album, "MP3", "", writeFile(t, srcDir, name, name)))
	}

	report, err := New(source, Config{Root: root, Workers: 4, Policy: Overwrite}, testLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 20)

	for i, res := range report.Results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, fmt.Sprintf("track%02d.mp3", i), res.Record.Title)
		assert.Equal(t, OutcomeTransferred, res.Outcome)
	}
	assert.Equal(t, 3, report.Dirs)
}

func TestPipeline_RootCreationFailureIsFatal(t *testing.T) {
	blocker := writeFile(t, t.TempDir(), "out", "file, not a dir")

	ctrl := gomock.NewController(t)
	source := catalogmocks.NewMockSource(ctrl) // never read

	report, err := New(source, Config{Root: blocker}, testLogger()).Run(context.Background())
	assert.Nil(t, report)

	var dirErr *DirectoryCreationError
	assert.True(t, errors.As(err, &dirErr))
}

func TestPipeline_DirectoryFailureStopsRun(t *testing.T) {
	root := t.TempDir()
	srcDir := t.TempDir()
	writeFile(t, root, "Blocked", "file where an artist dir should go")

	source := catalog.StaticSource{
		rawFile("First", ptr("Artist"), ptr("Album"), "MP3", "", writeFile(t, srcDir, "first.mp3", "1")),
		rawFile("Second", ptr("Blocked"), ptr("Album"), "MP3", "", writeFile(t, srcDir, "second.mp3", "2")),
		rawFile("Third", ptr("Artist"), ptr("Album"), "MP3", "", writeFile(t, srcDir, "third.mp3", "3")),
	}

	report, err := New(source, Config{Root: root}, testLogger()).Run(context.Background())

	var dirErr *DirectoryCreationError
	require.True(t, errors.As(err, &dirErr), "want DirectoryCreationError, got %v", err)
	require.NotNil(t, report, "partial report is returned")
	require.Len(t, report.Results, 1)
	assert.Equal(t, "First", report.Results[0].Record.Title)
	assert.NoFileExists(t, filepath.Join(root, "Artist", "Album", "third.mp3"))
}

func TestPipeline_CatalogErrorIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := catalogmocks.NewMockSource(ctrl)
	source.EXPECT().Snapshot(gomock.Any()).Return(nil, catalog.ErrSnapshot)

	report, err := New(source, Config{Root: t.TempDir()}, testLogger()).Run(context.Background())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, catalog.ErrSnapshot)
}

func TestPipeline_CanceledContext(t *testing.T) {
	root := t.TempDir()
	src := writeFile(t, t.TempDir(), "a.mp3", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := catalog.StaticSource{rawFile("A", ptr("Artist"), ptr("Album"), "MP3", "", src)}
	report, err := New(source, Config{Root: root}, testLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Results)
}

func TestPipeline_PlanTouchesNothing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	source := catalog.StaticSource{
		rawFile("A", nil, nil, "MP3", "", "/music/a.mp3"),
		rawFile("B", ptr("Artist"), ptr("Album"), "mp4", catalog.CodecAACLC, `C:\music\b.mp4`),
		{catalog.ColumnObjectType: int64(6), catalog.ColumnName: "Special"},
	}
	planned, ignored, err := New(source, Config{Root: root, Mode: ModeFLAC}, testLogger()).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ignored)
	require.Len(t, planned, 2)
	assert.Equal(t, ActionCopy, planned[0].Plan.Action)
	assert.Equal(t, filepath.Join(root, UnknownArtist, UnknownAlbum), planned[0].Plan.Dir)
	assert.Equal(t, ActionConvert, planned[1].Plan.Action)
	assert.Equal(t, "b.flac", planned[1].Plan.Filename)

	assert.NoDirExists(t, root)
}

func TestPipeline_CollidingDestinationsWithWorkers(t *testing.T) {
	for i := range 20 {
		t.Run(fmt.Sprintf("run%02d", i), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			root := t.TempDir()
			source := catalog.StaticSource{
				rawFile("A", ptr("Art"), ptr("Alb"), "3GP", catalog.CodecAACLC, writeFile(t, t.TempDir(), "x.3gp", "A")),
				rawFile("B", ptr("Art"), ptr("Alb"), "3GP", catalog.CodecAACLC, writeFile(t, t.TempDir(), "x.3gp", "B")),
			}

			report, err := New(source, Config{
				Root:      root,
				Mode:      ModeFLAC,
				Policy:    SkipExisting,
				Converter: copyingConverter(ctrl),
				Workers:   2,
			}, testLogger()).Run(context.Background())
			require.NoError(t, err)
			require.Len(t, report.Results, 2)

			assert.Equal(t, OutcomeConverted, report.Results[0].Outcome)
			assert.Equal(t, OutcomeSkipped, report.Results[1].Outcome)
			assert.Equal(t, ReasonDestinationExists, report.Results[1].Reason)

			dir := filepath.Join(root, "Art", "Alb")
			got, err := os.ReadFile(filepath.Join(dir, "x.flac"))
			require.NoError(t, err)
			assert.Equal(t, "flac:A", string(got), "first record in catalog order wins")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no staged copies left")
		})
	}
}

func TestPipeline_CollidingCopiesOverwriteInOrder(t *testing.T) {
	for i := range 20 {
		t.Run(fmt.Sprintf("run%02d", i), func(t *testing.T) {
			root := t.TempDir()
			var source catalog.StaticSource
			for _, content := range []string{"first", "second", "third"} {
				source = append(source, rawFile(content, ptr("Art"), ptr("Alb"), "MP3", "",
					writeFile(t, t.TempDir(), "song.mp3", content)))
			}

			report, err := New(source, Config{Root: root, Policy: Overwrite, Workers: 3}, testLogger()).
				Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, report.Count(OutcomeTransferred))

			got, err := os.ReadFile(filepath.Join(root, "Art", "Alb", "song.mp3"))
			require.NoError(t, err)
			assert.Equal(t, "third", string(got), "last record in catalog order wins")
		})
	}
}

func TestClaims_Take(t *testing.T) {
	c := make(claims)
	first := make(chan struct{})
	assert.Nil(t, c.take("/out/A/B/x.flac", first))

	second := make(chan struct{})
	prev := c.take("/out/A/./B/x.flac", second)
	assert.Equal(t, (<-chan struct{})(first), prev, "cleaned paths share a claim")

	assert.Equal(t, (<-chan struct{})(second), c.take("/out/A/B/x.flac", make(chan struct{})))
	assert.Nil(t, c.take("/out/A/B/y.flac", make(chan struct{})))
}
