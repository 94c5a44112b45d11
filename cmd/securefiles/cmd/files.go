package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/templui/securefiles/internal/model"
	"github.com/templui/securefiles/internal/validation"
)

func lsCmd(env *Env) *cobra.Command {
	var filter model.FileFilter

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if filter.FileType != "" {
				fileType, ok := model.ParseFileType(filter.FileType)
				if !ok {
					return &validation.ValidationError{
						Field:   "type",
						Message: fmt.Sprintf("unknown file type %q, expected one of: %s", filter.FileType, model.FileTypeNames()),
					}
				}
				filter.FileType = string(fileType)
			}
			if err := env.requireSession(ctx); err != nil {
				return err
			}
			files, err := env.App.FileService.List(ctx, filter)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), files, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Folder, "folder", "", "only files in this folder")
	cmd.Flags().StringVar(&filter.FileType, "type", "", "only files of this type ("+model.FileTypeNames()+")")
	return cmd
}

func printFiles(w io.Writer, files []model.FileRecord, now time.Time) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tFOLDER\tUPLOADED")
	for _, f := range files {
		uploaded := "-"
		if !f.UploadedAt.IsZero() {
			uploaded = humanize.RelTime(f.UploadedAt, now, "ago", "from now")
		}
		folder := f.Folder
		if folder == "" {
			folder = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Filename, f.FileType.Label(), humanize.IBytes(uint64(max(f.Size, 0))), folder, uploaded)
	}
	_ = tw.Flush()
}

func uploadCmd(env *Env) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload one or more files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			files, closeAll, err := openUploads(args)
			defer closeAll()
			if err != nil {
				return err
			}

			if err := env.App.FileService.Upload(ctx, files, folder); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d file(s)\n", len(files))

			listing, err := env.App.FileService.Refresh(ctx)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), listing, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "destination folder")
	return cmd
}

// openUploads opens every path for streaming. closeAll is always safe to call.
func openUploads(paths []string) ([]model.UploadFile, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]model.UploadFile, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to open %s: %w", path, err)
		}
		opened = append(opened, f)

		info, err := f.Stat()
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, closeAll, &validation.ValidationError{Field: path, Message: "is a directory"}
		}

		contentType, err := validation.DetectContentType(info.Name(), f)
		if err != nil {
			return nil, closeAll, fmt.Errorf("%s: %w", path, err)
		}

		files = append(files, model.UploadFile{
			Name:        filepath.Base(path),
			Size:        info.Size(),
			ContentType: contentType,
			Content:     f,
		})
	}

	return files, closeAll, nil
}

func downloadCmd(env *Env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download a file into the download directory or bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			// The listing supplies the original filename
			if out == "" {
				if _, err := env.App.FileService.List(ctx, model.FileFilter{}); err != nil {
					return err
				}
			}

			sink, err := env.App.Downloads(ctx)
			if err != nil {
				return err
			}

			location, err := env.App.FileService.Fetch(ctx, args[0], sink, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", location)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "name to save as (defaults to the uploaded filename)")
	return cmd
}

func urlCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "url ID",
		Short: "Print a download link for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}
			link, err := env.App.FileService.Download(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
}

func rmCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"delete"},
		Short:   "Delete files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}

			for _, id := range args {
				if err := env.App.FileService.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}

			listing, err := env.App.FileService.Refresh(ctx)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), listing, time.Now())
			return nil
		},
	}
}
