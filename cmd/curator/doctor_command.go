package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/deps"
	"curator/internal/storage"
)

type doctorBinary struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

type doctorPayload struct {
	ConfigPath   string         `json:"config_path"`
	ConfigExists bool           `json:"config_exists"`
	StorageDir   string         `json:"storage_dir"`
	LogDir       string         `json:"log_dir"`
	StoredAssets int            `json:"stored_assets"`
	StoreError   string         `json:"store_error,omitempty"`
	Binaries     []doctorBinary `json:"binaries"`
	Healthy      bool           `json:"healthy"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, store, and external binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			payload := doctorPayload{
				ConfigPath:   ctx.configPath,
				ConfigExists: ctx.configExists,
				StorageDir:   cfg.Paths.StorageDir,
				LogDir:       cfg.Paths.LogDir,
			}

			if storeErr := ctx.withStore(func(store *storage.FileStore) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				payload.StoredAssets = len(entries)
				return nil
			}); storeErr != nil {
				payload.StoreError = storeErr.Error()
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			for _, status := range statuses {
				payload.Binaries = append(payload.Binaries, doctorBinary{
					Name:        status.Name,
					Command:     status.Command,
					Description: status.Description,
					Optional:    status.Optional,
					Available:   status.Available,
					Detail:      status.Detail,
				})
			}
			payload.Healthy = deps.Healthy(statuses) && payload.StoreError == ""

			if asJSON {
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
			} else {
				renderDoctor(cmd, payload)
			}

			if !payload.Healthy {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a report")
	return cmd
}

func renderDoctor(cmd *cobra.Command, payload doctorPayload) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Configuration", colorize) {
		fmt.Fprintln(out, line)
	}
	configMessage := payload.ConfigPath
	if !payload.ConfigExists {
		configMessage += " (not created yet; run curator config init)"
	}
	fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, configMessage, colorize))
	fmt.Fprintln(out, renderStatusLine("Asset store", statusInfo, payload.StorageDir, colorize))
	fmt.Fprintln(out, renderStatusLine("Log directory", statusInfo, payload.LogDir, colorize))

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Asset store", colorize) {
		fmt.Fprintln(out, line)
	}
	if payload.StoreError != "" {
		fmt.Fprintln(out, renderStatusLine("Assets", statusError, payload.StoreError, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Assets", statusOK, fmt.Sprintf("%d stored", payload.StoredAssets), colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("External binaries", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, binary := range payload.Binaries {
		kind := statusOK
		message := binary.Command
		if !binary.Available {
			message = binary.Detail
			kind = statusError
			if binary.Optional {
				kind = statusWarn
			}
		}
		fmt.Fprintln(out, renderStatusLine(binary.Name, kind, message, colorize))
	}

	fmt.Fprintln(out)
	if payload.Healthy {
		fmt.Fprintln(out, renderStatusLine("Doctor", statusOK, "no problems found", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Doctor", statusError, "problems found", colorize))
	}
}
