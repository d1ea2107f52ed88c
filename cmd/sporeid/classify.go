// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/sporeid/internal/codec"
	"github.com/pdiddy/sporeid/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a specimen from its measurements",
	Long: `Classify sends the measurements of one specimen to the prediction
service and prints the predicted family, its confidence and the top
candidates.

Measurements come from flags, or from a JSON file in the service's wire
format with --input (use - for stdin). Categorical values are validated
before anything is sent; values outside their usual range only produce a
warning.

Successful classifications are added to the history when the history
backend is durable.`,
	Example: `  sporeid classify --spore-size 140 --spore-shape 1 --wall-type 1 \
    --ornamentation 1 --gene-its 1 --genetic-cluster 1 --gc-content 44.5 \
    --habitat 0 --elevation 2800 --mean-temp 12.5 --ph 0.31 \
    --conductivity -0.77 --nitrogen 0.05 --texture clay

  sporeid classify --input specimen.json --json`,
	RunE: runClassify,
}

// measurementFlags lists the flags that make up one MeasurementInput.
var measurementFlags = []string{
	"spore-size", "spore-shape", "wall-type", "ornamentation",
	"gene-its", "genetic-cluster", "gc-content",
	"habitat", "elevation", "mean-temp",
	"ph", "conductivity", "nitrogen", "texture",
}

func runClassify(cmd *cobra.Command, args []string) error {
	in, err := measurementsFromCommand(cmd)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	for _, w := range in.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res := a.svc.ClassifyMeasurements(cmd.Context(), in)

	asJSON, _ := cmd.Flags().GetBool("json")
	return printResult(cmd.OutOrStdout(), res, asJSON)
}

func measurementsFromCommand(cmd *cobra.Command) (types.MeasurementInput, error) {
	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath != "" {
		if changed := changedMeasurementFlags(cmd.Flags()); len(changed) > 0 {
			return types.MeasurementInput{}, fmt.Errorf("--input cannot be combined with --%s", changed[0])
		}
		return readMeasurements(cmd.InOrStdin(), inputPath)
	}

	var missing []string
	for _, name := range measurementFlags {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return types.MeasurementInput{}, fmt.Errorf("%w: missing measurements: %s",
			types.ErrValidation, strings.Join(missing, ", "))
	}

	f := cmd.Flags()
	texture, _ := f.GetString("texture")
	tex, err := types.ParseTexture(texture)
	if err != nil {
		return types.MeasurementInput{}, err
	}

	var in types.MeasurementInput
	in.SporeSizeUm, _ = f.GetFloat64("spore-size")
	shape, _ := f.GetInt("spore-shape")
	wall, _ := f.GetInt("wall-type")
	orn, _ := f.GetInt("ornamentation")
	in.SporeShape = types.SporeShape(shape)
	in.WallType = types.WallType(wall)
	in.Ornamentation = types.Ornamentation(orn)
	in.GeneITS, _ = f.GetFloat64("gene-its")
	in.GeneticCluster, _ = f.GetInt("genetic-cluster")
	in.GCContent, _ = f.GetFloat64("gc-content")
	habitat, _ := f.GetInt("habitat")
	in.HabitatType = types.Habitat(habitat)
	in.ElevationM, _ = f.GetFloat64("elevation")
	in.MeanTempC, _ = f.GetFloat64("mean-temp")
	in.PH, _ = f.GetFloat64("ph")
	in.ConductivityDsM, _ = f.GetFloat64("conductivity")
	in.NitrogenTotalPct, _ = f.GetFloat64("nitrogen")
	in.Texture = tex
	return in, nil
}

func changedMeasurementFlags(fs *pflag.FlagSet) []string {
	var changed []string
	for _, name := range measurementFlags {
		if fs.Changed(name) {
			changed = append(changed, name)
		}
	}
	return changed
}

func readMeasurements(stdin io.Reader, path string) (types.MeasurementInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return types.MeasurementInput{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return codec.DecodeRequest(data)
}

// printResult writes res to w. A Failure is returned as the error so the
// command exits non-zero with "error: <message>".
func printResult(w io.Writer, res types.ClassificationResult, asJSON bool) error {
	switch r := res.(type) {
	case types.Success:
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}
		fmt.Fprintf(w, "Family:     %s\n", r.Family)
		fmt.Fprintf(w, "Confidence: %s\n", r.ConfidencePercentLabel)
		if len(r.Top3) > 0 {
			fmt.Fprintln(w, "Top candidates:")
			for i, fp := range r.Top3 {
				fmt.Fprintf(w, "  %d. %-32s %5.1f%%\n", i+1, fp.Family, fp.Probability*100)
			}
		}
		return nil
	case types.Failure:
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return r
	default:
		return fmt.Errorf("unexpected result %T", res)
	}
}

// addClassifyFlags registers the measurement and output flags on fs.
func addClassifyFlags(f *pflag.FlagSet) {
	f.Float64("spore-size", 0, "spore size in micrometres")
	f.Int("spore-shape", 0, "spore shape: 0 round, 1 oval, 2 elongated")
	f.Int("wall-type", 0, "wall type: 0 simple, 1 double, 2 triple")
	f.Int("ornamentation", 0, "ornamentation: 0 smooth, 1 granular, 2 spiny, 3 reticulate")
	f.Float64("gene-its", 0, "ITS gene marker: 0 absent, 1 present")
	f.Int("genetic-cluster", 0, "genetic cluster index (0-3)")
	f.Float64("gc-content", 0, "GC content percentage")
	f.Int("habitat", 0, "habitat: 0 forest, 1 paramo, 2 scrub, 3 grassland")
	f.Float64("elevation", 0, "elevation in metres")
	f.Float64("mean-temp", 0, "mean temperature in degrees Celsius")
	f.Float64("ph", 0, "soil pH (standardized)")
	f.Float64("conductivity", 0, "soil electrical conductivity in dS/m (standardized)")
	f.Float64("nitrogen", 0, "total soil nitrogen percentage (standardized)")
	f.String("texture", "", "soil texture: clay, sand, loam or silt")
	f.String("input", "", "read measurements from a wire-format JSON file (- for stdin)")
	f.Bool("json", false, "output the result as JSON")
}

func init() {
	addClassifyFlags(classifyCmd.Flags())
	rootCmd.AddCommand(classifyCmd)
}
