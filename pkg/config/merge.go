package config

// MergeConfig merges source config into target, updating sources tracking.
// Strings and lists are applied when non-empty. Numbers and booleans are
// applied when listed in source.SetFields, so an explicit 0 or false wins;
// without SetFields (programmatic configs) only non-zero values are merged.
func MergeConfig(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if isSet(source, "port", source.Port != 0) {
		target.Port = source.Port
		target.Sources["port"] = sourceType
	}
	if source.Path != "" {
		target.Path = source.Path
		target.Sources["path"] = sourceType
	}
	if isSet(source, "readTimeout", source.ReadTimeout != 0) {
		target.ReadTimeout = source.ReadTimeout
		target.Sources["readTimeout"] = sourceType
	}
	if isSet(source, "writeTimeout", source.WriteTimeout != 0) {
		target.WriteTimeout = source.WriteTimeout
		target.Sources["writeTimeout"] = sourceType
	}
	if isSet(source, "shutdownTimeout", source.ShutdownTimeout != 0) {
		target.ShutdownTimeout = source.ShutdownTimeout
		target.Sources["shutdownTimeout"] = sourceType
	}
	if source.Seed != "" {
		target.Seed = source.Seed
		target.Sources["seed"] = sourceType
	}
	if source.MetricsPath != "" {
		target.MetricsPath = source.MetricsPath
		target.Sources["metricsPath"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}

	if isSet(source, "introspection", source.Introspection) {
		target.Introspection = source.Introspection
		target.Sources["introspection"] = sourceType
	}
	if isSet(source, "explorer", source.Explorer) {
		target.Explorer = source.Explorer
		target.Sources["explorer"] = sourceType
	}
	if isSet(source, "metrics", source.Metrics) {
		target.Metrics = source.Metrics
		target.Sources["metrics"] = sourceType
	}

	mergeCORS(target, source, sourceType)
}

func mergeCORS(target, source *Config, sourceType string) {
	src := &source.CORS
	dst := &target.CORS

	if isSet(source, "cors.enabled", src.Enabled) {
		dst.Enabled = src.Enabled
		target.Sources["cors.enabled"] = sourceType
	}
	if len(src.AllowOrigins) > 0 {
		dst.AllowOrigins = src.AllowOrigins
		target.Sources["cors.allowOrigins"] = sourceType
	}
	if len(src.AllowMethods) > 0 {
		dst.AllowMethods = src.AllowMethods
		target.Sources["cors.allowMethods"] = sourceType
	}
	if len(src.AllowHeaders) > 0 {
		dst.AllowHeaders = src.AllowHeaders
		target.Sources["cors.allowHeaders"] = sourceType
	}
	if len(src.ExposeHeaders) > 0 {
		dst.ExposeHeaders = src.ExposeHeaders
		target.Sources["cors.exposeHeaders"] = sourceType
	}
	if isSet(source, "cors.allowCredentials", src.AllowCredentials) {
		dst.AllowCredentials = src.AllowCredentials
		target.Sources["cors.allowCredentials"] = sourceType
	}
	if isSet(source, "cors.maxAge", src.MaxAge != 0) {
		dst.MaxAge = src.MaxAge
		target.Sources["cors.maxAge"] = sourceType
	}
}

// isSet reports whether the field identified by its YAML key was explicitly
// set in the source config. nonZero is the fallback when SetFields is nil.
func isSet(cfg *Config, yamlKey string, nonZero bool) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	return nonZero
}
