// Package bridge converts between host-native values and native Go values.
//
// A host runtime is seen only through the Env interface, which mirrors the
// small set of primitives a native-extension API offers: positional argument
// access, scalar and array reads, value creation, and handle scopes. Entry
// points decode their arguments and encode their result with a Marshaller;
// they never touch host values directly.
//
//	m := bridge.Marshaller{}
//	args := env.Args(1)
//	flows, err := m.Float64Array(env, args[0])
//	if err != nil {
//	    return nil, err
//	}
//	return m.EncodeFloat64(env, numeric.IRR(flows))
package bridge
