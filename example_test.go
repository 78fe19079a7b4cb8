package delaunay_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/delaunay"
	"github.com/hupe1980/delaunay/blobstore"
)

func Example() {
	tri, err := delaunay.New([][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		log.Fatal(err)
	}
	defer tri.Close()

	n, _ := tri.NSimplex()
	inside, _ := tri.FindSimplexPoint([]float64{0.5, 0.5})
	outside, _ := tri.FindSimplexPoint([]float64{10, 10})

	fmt.Println(n, inside != -1, outside)
	// Output: 2 true -1
}

func ExampleDelaunay_Flush() {
	tri, err := delaunay.New(
		[][]float64{{0, 0}, {2, 0}, {0, 2}, {2.2, 2.1}},
		delaunay.WithIncremental(true),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer tri.Close()

	_ = tri.AddPoints([][]float64{{1, 1}})
	before, _ := tri.NSimplex()

	touched, _ := tri.Flush(false)
	after, _ := tri.NSimplex()

	fmt.Println(before, touched, after)
	// Output: 2 true 4
}

func ExampleConvexHull_Area() {
	hull, err := delaunay.NewConvexHull([][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.5, 0.5}})
	if err != nil {
		log.Fatal(err)
	}
	defer hull.Close()

	area, _ := hull.Area()
	volume, _ := hull.Volume()
	verts, _ := hull.Vertices()

	fmt.Printf("%.1f %.1f %v\n", area, volume, verts)
	// Output: 4.0 1.0 [0 1 2 3]
}

func ExampleLoad() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	tri, err := delaunay.New([][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		log.Fatal(err)
	}
	defer tri.Close()

	if err := tri.Save(ctx, store, "square"); err != nil {
		log.Fatal(err)
	}

	loaded, err := delaunay.Load(ctx, store, "square")
	if err != nil {
		log.Fatal(err)
	}
	defer loaded.Close()

	n, _ := loaded.NSimplex()
	fmt.Println(n)
	// Output: 2
}
