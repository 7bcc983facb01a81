// Package export stores downloaded activity files.
//
// Storage has two implementations: LocalStorage writes under a base
// directory and S3Storage uploads to an S3 (or S3-compatible) bucket. Both
// confine keys to their root, so a crafted activity name cannot escape it.
//
//	store, err := export.NewLocalStorage("./activities", "")
//	if err != nil {
//		return err
//	}
//	f, err := client.ExportActivity(ctx, store, activityID, garminconnect.FormatGPX)
//
// S3 errors are mapped onto the sentinel errors in errors.go.
package export
