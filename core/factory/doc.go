// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[sequencing.Strategy]()
//	reg.Register("search", func(conf map[string]any) (sequencing.Strategy, error) {
//	    var m sequencing.MultiStart
//	    if err := factory.Decode(conf, &m); err != nil {
//	        return nil, err
//	    }
//	    return m, nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "search", Conf: map[string]any{"iterations": 50}})
package factory
