// Command annotstat prints annotation statistics for a project file.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"slice-annotator/internal/project"
	"slice-annotator/pkg/geometry"
)

func main() {
	projectPath := flag.String("project", "", "Path to project file (.annproj)")
	verbose := flag.Bool("v", false, "Print per-annotation details")
	flag.Parse()

	if *projectPath == "" {
		fmt.Println("Usage: annotstat -project <path> [-v]")
		os.Exit(1)
	}

	proj, err := project.Load(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Project: %s (version %d)\n", proj.Name, proj.Version)
	fmt.Printf("Created: %s  Modified: %s\n",
		proj.Created.Format("2006-01-02"), proj.Modified.Format("2006-01-02"))

	totalAnnots := 0
	totalVertices := 0

	for _, img := range proj.Images {
		fmt.Printf("\nImage %q: %dx%dx%d, spacing (%.3g, %.3g, %.3g)\n",
			img.DisplayName, img.Dims[0], img.Dims[1], img.Dims[2],
			img.Spacing.X, img.Spacing.Y, img.Spacing.Z)

		closed := 0
		filled := 0
		for i, a := range img.Annotations {
			vertices := 0
			for _, b := range a.Boundaries {
				vertices += len(b)
			}
			totalVertices += vertices
			if a.Closed {
				closed++
			}
			if a.Filled {
				filled++
			}

			if *verbose {
				area := 0.0
				var bbox geometry.Rect
				if len(a.Boundaries) > 0 {
					bbox = geometry.BoundingBox(a.Boundaries[0])
					if a.Closed {
						area = math.Abs(geometry.PolygonSignedArea(a.Boundaries[0]))
					}
				}
				center := bbox.Center()
				marker := " "
				if i == img.ActiveAnnotation {
					marker = "*"
				}
				fmt.Printf("  %s %-24q %3d vertices  closed=%-5v filled=%-5v area=%.3f  bbox %.3gx%.3g at (%.3g, %.3g)\n",
					marker, a.DisplayName, vertices, a.Closed, a.Filled, area,
					bbox.Width, bbox.Height, center.X, center.Y)
			}
		}

		fmt.Printf("  %d annotations (%d closed, %d filled)\n",
			len(img.Annotations), closed, filled)
		totalAnnots += len(img.Annotations)
	}

	fmt.Printf("\nTotal: %d annotations, %d vertices across %d images\n",
		totalAnnots, totalVertices, len(proj.Images))
}
