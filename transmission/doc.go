// Package transmission reads torrent status from the transmission-remote command.
//
// The listing printed by `transmission-remote --list` is a fixed-width table.
// Data rows are indented; the header and the "Sum:" footer are not. Each field is
// cut at a fixed byte column because names and padded values contain spaces.
//
// # Usage
//
//	remote, err := transmission.NewRemote(nil, 10*time.Second, nil, logger)
//	if err != nil {
//	    return err
//	}
//	slots, err := remote.Slots(ctx)
//
// The configured share ratio limit is read once from the daemon settings file:
//
//	maxRatio := transmission.LoadRatioLimit(transmission.DefaultSettingsPath, logger)
package transmission
