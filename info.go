package fatnav

// Info summarizes a mounted volume.
type Info struct {
	Label             string `json:"label" yaml:"label"`
	OEMName           string `json:"oemName" yaml:"oemName"`
	FileSystemType    string `json:"fileSystemType" yaml:"fileSystemType"`
	VolumeID          uint32 `json:"volumeId" yaml:"volumeId"`
	Media             uint8  `json:"media" yaml:"media"`
	BytesPerSector    uint16 `json:"bytesPerSector" yaml:"bytesPerSector"`
	SectorsPerCluster uint8  `json:"sectorsPerCluster" yaml:"sectorsPerCluster"`
	ClusterSize       int    `json:"clusterSize" yaml:"clusterSize"`
	ReservedSectors   uint16 `json:"reservedSectors" yaml:"reservedSectors"`
	FATCount          uint8  `json:"fatCount" yaml:"fatCount"`
	FATSizeSectors    uint32 `json:"fatSizeSectors" yaml:"fatSizeSectors"`
	TotalSectors      uint32 `json:"totalSectors" yaml:"totalSectors"`
	RootCluster       uint32 `json:"rootCluster" yaml:"rootCluster"`
	FATRegionOffset   int64  `json:"fatRegionOffset" yaml:"fatRegionOffset"`
	DataRegionOffset  int64  `json:"dataRegionOffset" yaml:"dataRegionOffset"`

	// FATTruncated is set when the on-disk FAT is larger than the part that
	// is loaded for chain lookups.
	FATTruncated bool `json:"fatTruncated" yaml:"fatTruncated"`
}

// Info returns the volume summary.
func (fs *Fs) Info() Info {
	return Info{
		Label:             fs.record.Label(),
		OEMName:           fs.record.OEM(),
		FileSystemType:    fs.record.FSType(),
		VolumeID:          fs.record.VolumeID,
		Media:             fs.record.Media,
		BytesPerSector:    fs.boot.BytesPerSector,
		SectorsPerCluster: fs.boot.SectorsPerCluster,
		ClusterSize:       fs.boot.ClusterSize(),
		ReservedSectors:   fs.boot.ReservedSectorsCount,
		FATCount:          fs.boot.FATCount,
		FATSizeSectors:    fs.boot.FATSizeSectors,
		TotalSectors:      fs.record.TotalSectors(),
		RootCluster:       fs.boot.RootCluster,
		FATRegionOffset:   fs.geometry.FATRegionOffset,
		DataRegionOffset:  fs.geometry.DataRegionOffset,
		FATTruncated:      fs.fatTruncated(),
	}
}

func (fs *Fs) fatTruncated() bool {
	return uint64(fs.boot.FATSizeSectors)*uint64(fs.boot.BytesPerSector) > MaxFATSize
}
