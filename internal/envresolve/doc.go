// Package envresolve classifies the ENV_ inputs of a create operation and
// turns each into the value a container environment entry should carry.
//
// Classification is ordered, first match wins:
//
//  1. Service address: get_attribute(<requirement>, ip_address) reaching a
//     Service. The value becomes a $SERVICE_IP_LOOKUP<k> placeholder and the
//     service is recorded in the deployment's lookup table under index k.
//  2. Endpoint property: get_property(<requirement>, <capability>, <name>)
//     on an endpoint capability. Resolved eagerly to its literal value.
//  3. Anything else is evaluated. An invalid argument skips the entry.
package envresolve
