package storageengine

// Options configures bootstrap. Field names mirror the config keys
// cmd/catalog binds from viper/environment.
type Options struct {
	// DirectoryPerDB requires the backend to support per-database
	// directories; bootstrap fails fatally if the backend does not.
	DirectoryPerDB bool
	// DirectoryForIndexes is passed through to the persistent catalog
	// (catalog.New); this core does not interpret it further.
	DirectoryForIndexes bool
	// ForRepair triggers a catalog-ident repair during bootstrap and is
	// threaded to every Handle's InitCollection call.
	ForRepair bool
}
