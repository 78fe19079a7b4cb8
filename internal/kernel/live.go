package kernel

// Live exposes the package-level workspace through the interfaces of the
// session and mesh packages.
type Live struct{}

func (Live) Save() ([]byte, error) { return Save() }

func (Live) Restore(blob []byte) error { return Restore(blob) }

func (Live) FreeAll() (int64, int64) { return FreeAll() }

func (Live) FirstFacet() int { return FirstFacet() }

func (Live) FacetIDBound() int { return FacetIDBound() }

func (Live) Facet(id int) (Facet, bool) { return GetFacet(id) }

func (Live) PointID(vertex int) int { return PointID(vertex) }

func (Live) Coplanar() []CoplanarPoint { return Coplanar() }
