package health

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

type Server struct {
	grpc_health_v1.UnimplementedHealthServer

	probes map[string]Probe
}

func NewServer(probes map[string]Probe) *Server {
	if probes == nil {
		probes = map[string]Probe{}
	}
	return &Server{probes: probes}
}

// Check runs every probe for the empty service name and the named probe otherwise.
func (s *Server) Check(
	ctx context.Context,
	request *grpc_health_v1.HealthCheckRequest,
) (*grpc_health_v1.HealthCheckResponse, error) {
	service := request.GetService()

	if service == "" {
		for _, probe := range s.probes {
			if err := probe(ctx); err != nil {
				return notServing(), nil
			}
		}
		return serving(), nil
	}

	probe, found := s.probes[service]
	if !found {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}
	if err := probe(ctx); err != nil {
		return notServing(), nil
	}

	return serving(), nil
}

func (s *Server) Watch(
	request *grpc_health_v1.HealthCheckRequest,
	stream grpc_health_v1.Health_WatchServer) error {
	response, err := s.Check(stream.Context(), request)
	if err != nil {
		return err
	}
	return stream.Send(response)
}

func RegisterService(server *grpc.Server, probes map[string]Probe) {
	grpc_health_v1.RegisterHealthServer(server, NewServer(probes))
}

func serving() *grpc_health_v1.HealthCheckResponse {
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}
}

func notServing() *grpc_health_v1.HealthCheckResponse {
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}
}
