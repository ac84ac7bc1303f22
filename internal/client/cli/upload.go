package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/veristream/veristream-cli/internal/client/store"
)

// openFile is a test seam for os.Open.
var openFile = os.Open

// Upload prompts for a video file and its metadata, then streams the file
// to the server in fixed-size chunks. Progress is reported per chunk by the
// store; on failure the failing chunk index is printed so the user knows how
// far the upload got.
func (a *App) Upload(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to the video file", os.Stdout)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.reader, "Location (optional)", os.Stdout)
	if err != nil {
		return err
	}
	thumbnail, err := getSimpleText(a.reader, "Thumbnail URL (optional)", os.Stdout)
	if err != nil {
		return err
	}

	f, err := openFile(path)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	err = a.store.UploadVideo(ctx, store.UploadRequest{
		Filename:     filepath.Base(path),
		Title:        title,
		Description:  description,
		Location:     location,
		ThumbnailURL: thumbnail,
		Size:         info.Size(),
	}, f)

	up := a.store.Upload()
	if err != nil {
		if up.Error != nil {
			printlnFn("Upload failed:", up.Error.Message)
		} else {
			printlnFn("Upload failed:", err.Error())
		}
		if up.Phase == store.UploadFailed {
			printlnFn("Stopped at chunk", up.FailedChunk+1, "of", up.TotalChunks)
		}
		a.store.ResetUpload()
		return err
	}

	printlnFn("Upload complete:", up.TotalChunks, "chunks sent.")
	a.store.ResetUpload()
	return nil
}
