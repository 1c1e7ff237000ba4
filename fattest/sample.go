package fattest

// Clusters and contents of the Sample volume.
//
//	/            cluster 2
//	├─ docs/     cluster 5
//	│  ├─ notes.txt   cluster 6, "notes"
//	│  └─ sub/        cluster 12
//	│     └─ deep.txt cluster 13, "deep"
//	├─ readme.txt     cluster 7, "Hello World"
//	├─ empty.txt      no cluster, size 0
//	├─ big.bin        clusters 8, 9, 10
//	└─ short.bin      cluster 11, size claims three clusters
//
// The root also holds a volume label, a long name fragment and a deleted
// record, none of which are visible.
const (
	SampleRootCluster   = 2
	SampleDocsCluster   = 5
	SampleNotesCluster  = 6
	SampleReadmeCluster = 7
	SampleBigCluster    = 8
	SampleShortCluster  = 11
	SampleSubCluster    = 12
	SampleDeepCluster   = 13

	SampleLabel     = "TESTVOL"
	SampleReadme    = "Hello World"
	SampleNotes     = "notes"
	SampleDeep      = "deep"
	SampleBigSize   = 1200
	SampleShortSize = 1500
	SampleWriteDate = 20890 // 2020-12-26
	SampleWriteTime = 41936 // 20:30:32
	SampleDeleted   = "old.txt"
)

// SampleBig returns the content of big.bin.
func SampleBig() []byte {
	data := make([]byte, SampleBigSize)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// SampleShort returns what the chain of short.bin holds: one cluster.
func SampleShort() []byte {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	return data
}

// Sample returns a builder holding the volume described above.
func Sample() *Builder {
	b := NewBuilder()
	b.Label = SampleLabel

	readme := File("README", "TXT", SampleReadmeCluster, uint32(len(SampleReadme)))
	readme.WriteDate = SampleWriteDate
	readme.WriteTime = SampleWriteTime

	b.SetDir([]Record{
		VolumeLabel(SampleLabel),
		LongName(),
		{Name: "OLD", Ext: "TXT", Attr: AttrArchive, Cluster: 20, Size: 3, Deleted: true},
		Dir("DOCS", SampleDocsCluster),
		readme,
		File("EMPTY", "TXT", 0, 0),
		File("BIG", "BIN", SampleBigCluster, SampleBigSize),
		File("SHORT", "BIN", SampleShortCluster, SampleShortSize),
	}, SampleRootCluster)

	b.SetDir(append(Dot(SampleDocsCluster, 0),
		File("NOTES", "TXT", SampleNotesCluster, uint32(len(SampleNotes))),
		Dir("SUB", SampleSubCluster),
	), SampleDocsCluster)

	b.SetDir(append(Dot(SampleSubCluster, SampleDocsCluster),
		File("DEEP", "TXT", SampleDeepCluster, uint32(len(SampleDeep))),
	), SampleSubCluster)

	b.SetChain([]byte(SampleNotes), SampleNotesCluster)
	b.SetChain([]byte(SampleReadme), SampleReadmeCluster)
	b.SetChain(SampleBig(), SampleBigCluster, SampleBigCluster+1, SampleBigCluster+2)
	b.SetChain(SampleShort(), SampleShortCluster)
	b.SetChain([]byte(SampleDeep), SampleDeepCluster)
	return b
}
